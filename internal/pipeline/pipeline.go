// Package pipeline sequences the discovery stages: collect, quality-gate,
// classify, enrich, and publish. Each run is stateless and assembles a single
// run report. Per-item failures are absorbed into the report; systemic
// failures abort the run with no partial report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aiobituaries/discovery/internal/classifier"
	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/enrich"
)

// Filter is the quality gate's contract: a deterministic, side-effect-free
// subset selection.
type Filter interface {
	Filter(candidates []domain.Candidate) []domain.Candidate
}

// Runner orchestrates one discovery run per invocation.
type Runner struct {
	collector  domain.Collector
	gate       Filter
	classifier domain.Classifier
	store      domain.ContentStore
	logger     *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a pipeline runner over the injected stages.
func New(
	collector domain.Collector,
	gate Filter,
	cls domain.Classifier,
	store domain.ContentStore,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		collector:  collector,
		gate:       gate,
		classifier: cls,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the full pipeline for content published since the given time.
// Zero results at any stage short-circuit the remaining stages. The returned
// error indicates a systemic failure: in that case no report is produced.
func (r *Runner) Run(ctx context.Context, since time.Time) (*domain.RunResult, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	logger.Info("discovery run started", "since", since)

	discovered, err := r.collect(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	logger.Info("collect stage complete", "discovered", len(discovered))

	result := &domain.RunResult{
		Discovered: len(discovered),
		CreatedIDs: []string{},
		Errors:     []domain.RunError{},
	}
	if len(discovered) == 0 {
		return r.finish(logger, result), nil
	}

	filtered := r.gate.Filter(discovered)
	result.Filtered = len(filtered)
	logger.Info("quality gate complete", "filtered", len(filtered), "dropped", len(discovered)-len(filtered))
	if len(filtered) == 0 {
		return r.finish(logger, result), nil
	}

	classified, classifyErrs, err := r.classifier.Classify(ctx, filtered)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	result.Errors = append(result.Errors, classifyErrs...)

	approved := classifier.FilterApproved(classified)
	result.Classified = len(approved)
	logger.Info("classify stage complete",
		"classified", len(classified),
		"approved", len(approved),
		"failed", len(classifyErrs),
	)
	if len(approved) == 0 {
		return r.finish(logger, result), nil
	}

	discoveredAt := r.now().UTC()
	drafts := make([]domain.ObituaryDraft, len(approved))
	for i, cc := range approved {
		drafts[i] = enrich.Draft(cc, discoveredAt)
	}

	if err := r.publish(ctx, drafts, result, logger); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	return r.finish(logger, result), nil
}

// collect invokes the collector inside its own fault boundary: a panic from
// collector internals is a programming error and fatal for the run, not for
// the process.
func (r *Runner) collect(ctx context.Context, since time.Time) (candidates []domain.Candidate, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collector panicked: %v", p)
		}
	}()
	return r.collector.Collect(ctx, since)
}

// publish deduplicates drafts against the store by sourceUrl, then persists
// the remainder with per-item fault isolation. The dedup step is the
// pipeline's idempotency boundary across overlapping runs.
func (r *Runner) publish(ctx context.Context, drafts []domain.ObituaryDraft, result *domain.RunResult, logger *slog.Logger) error {
	urls := make([]string, len(drafts))
	for i := range drafts {
		urls[i] = drafts[i].SourceURL
	}

	existing, err := r.store.ExistingSourceURLs(ctx, urls)
	if err != nil {
		return fmt.Errorf("check existing drafts: %w", err)
	}

	var fresh []domain.ObituaryDraft
	for _, d := range drafts {
		if existing[d.SourceURL] {
			continue
		}
		fresh = append(fresh, d)
	}
	logger.Info("dedup complete", "new", len(fresh), "already_stored", len(drafts)-len(fresh))

	var failedIndices []int
	for i := range fresh {
		id, err := r.store.CreateDraft(ctx, &fresh[i])
		if err != nil {
			failedIndices = append(failedIndices, i)
			result.Errors = append(result.Errors, domain.RunError{
				Stage:   domain.StagePublish,
				URL:     fresh[i].SourceURL,
				Message: err.Error(),
			})
			continue
		}
		result.CreatedIDs = append(result.CreatedIDs, id)
	}

	result.Created = len(result.CreatedIDs)
	logger.Info("publish stage complete", "created", result.Created, "failed", len(failedIndices))
	return nil
}

func (r *Runner) finish(logger *slog.Logger, result *domain.RunResult) *domain.RunResult {
	result.Timestamp = r.now().UTC()
	logger.Info("discovery run finished",
		"discovered", result.Discovered,
		"filtered", result.Filtered,
		"classified", result.Classified,
		"created", result.Created,
		"errors", len(result.Errors),
	)
	return result
}
