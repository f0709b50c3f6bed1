// Package retry provides bounded retry with exponential backoff for calls to
// the external search and classification APIs.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Permanent wraps an error that must not be retried.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }

func (p *Permanent) Unwrap() error { return p.Err }

// Stop marks err as permanent so Do returns it without further attempts.
func Stop(err error) error {
	return &Permanent{Err: err}
}

// Do invokes fn up to attempts times, sleeping base, 2*base, 4*base, ...
// (plus up to 25% jitter) between attempts. It returns nil on the first
// success, the last error once attempts are exhausted, and stops early when
// the context is cancelled or fn returns a permanent error.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := base
	for i := 0; i < attempts; i++ {
		if i > 0 {
			jitter := time.Duration(rand.Int64N(int64(delay)/4 + 1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay + jitter):
			}
			delay *= 2
		}

		if err = fn(); err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
