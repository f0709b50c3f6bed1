package pipeline

import (
	"context"
	"errors"

	"github.com/aiobituaries/discovery/internal/domain"
)

// ErrStoreUnconfigured is returned for every write attempted without a
// configured content store.
var ErrStoreUnconfigured = errors.New("content store unconfigured")

// UnconfiguredStore stands in when no content store credentials are present.
// Dedup finds nothing and every write fails as a per-item error, so the rest
// of the pipeline still runs and the report shows why nothing was created.
type UnconfiguredStore struct{}

func (UnconfiguredStore) ExistingSourceURLs(_ context.Context, _ []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (UnconfiguredStore) CreateDraft(_ context.Context, _ *domain.ObituaryDraft) (string, error) {
	return "", ErrStoreUnconfigured
}
