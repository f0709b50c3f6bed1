package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("still broken")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "still broken")
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsEarly(t *testing.T) {
	authErr := errors.New("invalid credentials")
	calls := 0
	err := Do(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return Stop(authErr)
	})

	require.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, 5, 10*time.Second, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
}

func TestDo_FirstSuccessSkipsBackoff(t *testing.T) {
	start := time.Now()
	err := Do(context.Background(), 3, time.Second, func() error { return nil })

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestStop_PreservesWrappedError(t *testing.T) {
	base := errors.New("forbidden")
	wrapped := Stop(base)

	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "forbidden", wrapped.Error())
}
