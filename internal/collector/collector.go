// Package collector implements the discovery collector: it queries the
// configured upstream sources for new candidate content since a given
// timestamp. The two source categories (short-form posts and whitelisted news
// domains) are queried concurrently and fault-isolated from each other, so a
// misconfigured or failing source contributes an empty list instead of
// failing the run.
package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aiobituaries/discovery/internal/domain"
)

// Source is a single upstream search capability.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Configured reports whether the source has the credentials it needs.
	Configured() bool

	// Search returns candidates published since the given time.
	Search(ctx context.Context, since time.Time) ([]domain.Candidate, error)
}

// Collector fans a discovery query out to all sources.
type Collector struct {
	sources []Source
	logger  *slog.Logger
}

// New creates a collector over the given sources.
func New(logger *slog.Logger, sources ...Source) *Collector {
	return &Collector{
		sources: sources,
		logger:  logger,
	}
}

// Collect queries every source concurrently and merges the results. Expected
// failures (missing credentials, upstream errors) are logged and contribute
// nothing; Collect itself only errors on systemic faults, of which it
// currently has none.
func (c *Collector) Collect(ctx context.Context, since time.Time) ([]domain.Candidate, error) {
	results := make([][]domain.Candidate, len(c.sources))

	var wg sync.WaitGroup
	for i, src := range c.sources {
		if !src.Configured() {
			c.logger.Warn("search source unconfigured, skipping", "source", src.Name())
			continue
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			candidates, err := src.Search(ctx, since)
			if err != nil {
				c.logger.Warn("search source failed, continuing without it",
					"source", src.Name(),
					"error", err,
				)
				return
			}
			c.logger.Info("search source returned candidates",
				"source", src.Name(),
				"count", len(candidates),
			)
			results[i] = candidates
		}(i, src)
	}
	wg.Wait()

	var all []domain.Candidate
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
