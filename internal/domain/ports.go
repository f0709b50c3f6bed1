package domain

import (
	"context"
	"time"
)

// Collector discovers raw candidate content published since the given time.
// Expected upstream failures (missing credentials, API errors) degrade to
// partial or empty results; a returned error indicates a systemic fault that
// is terminal for the whole run.
type Collector interface {
	Collect(ctx context.Context, since time.Time) ([]Candidate, error)
}

// Classifier produces one classification result per candidate via the
// external text-classification capability. Per-item failures are returned as
// RunError descriptors and do not abort the remaining candidates; a returned
// error indicates a systemic fault.
type Classifier interface {
	Classify(ctx context.Context, candidates []Candidate) ([]ClassifiedCandidate, []RunError, error)
}

// ContentStore defines persistence operations against the external content
// store.
type ContentStore interface {
	// ExistingSourceURLs reports which of the given source URLs already have
	// a stored record. It is the pipeline's idempotency check.
	ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error)

	// CreateDraft persists a single draft and returns the store-assigned
	// document ID.
	CreateDraft(ctx context.Context, draft *ObituaryDraft) (string, error)
}
