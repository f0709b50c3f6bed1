// Package enrich attaches historical AI-capability context to approved claims
// and turns them into obituary drafts. Everything here is a pure
// transformation over curated tables; a malformed input degrades to a
// best-effort draft rather than failing the batch.
package enrich

import (
	"net/url"
	"strings"
	"time"

	"github.com/aiobituaries/discovery/internal/domain"
)

// Context computes the capability snapshot for a claim made at the given
// date. CurrentModel is always set; the remaining fields are nil outside the
// curated tables' coverage.
func Context(t time.Time) domain.ContextMetadata {
	meta := domain.ContextMetadata{
		CurrentModel: ModelAtDate(t),
	}

	snap := snapshotAtDate(t)
	if snap == nil {
		return meta
	}

	meta.BenchmarkName = ptr(snap.benchmarkName)
	meta.BenchmarkScore = ptr(snap.benchmarkScore)
	meta.NvdaPrice = ptr(snap.nvda)
	meta.MsftPrice = ptr(snap.msft)
	meta.GoogPrice = ptr(snap.goog)
	if snap.milestone != "" {
		meta.Milestone = ptr(snap.milestone)
	}
	return meta
}

// Draft builds an obituary draft from a classified candidate. discoveredAt is
// the time of the pipeline run, used for provenance and as the fallback claim
// date when the candidate has none.
func Draft(cc domain.ClassifiedCandidate, discoveredAt time.Time) domain.ObituaryDraft {
	c := cc.Candidate
	r := cc.Result

	claimDate := c.PublishedAt
	if claimDate.IsZero() {
		claimDate = discoveredAt
	}

	claim := strings.TrimSpace(r.ExtractedClaim)
	if claim == "" {
		claim = strings.TrimSpace(c.Title)
	}

	var categories []string
	if r.SuggestedCategory != "" {
		categories = []string{r.SuggestedCategory}
	}

	return domain.ObituaryDraft{
		Claim:      claim,
		Source:     sourceName(&c),
		SourceURL:  c.URL,
		Date:       claimDate.Format("2006-01-02"),
		Categories: categories,
		Context:    Context(claimDate),
		Slug:       Slug(claim, claimDate),
		Discovery: domain.DiscoveryMetadata{
			DiscoveredAt:     discoveredAt,
			Confidence:       r.ClaimConfidence,
			NotabilityReason: r.NotabilityReason,
			SourceType:       c.SourceType,
		},
	}
}

// sourceName attributes a claim to its author when one is known, falling back
// to the publication's domain.
func sourceName(c *domain.Candidate) string {
	if c.Author != nil {
		if c.Author.Name != "" {
			return c.Author.Name
		}
		if c.Author.Handle != "" {
			return "@" + c.Author.Handle
		}
	}
	if u, err := url.Parse(c.URL); err == nil && u.Host != "" {
		return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	}
	return "unknown"
}

func ptr[T any](v T) *T {
	return &v
}
