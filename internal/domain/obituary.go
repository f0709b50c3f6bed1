package domain

import "time"

// ContextMetadata is a historical AI-capability snapshot attached to a draft.
// It is computed from curated tables, never measured live. Optional fields are
// nil when coverage doesn't reach the claim's date.
type ContextMetadata struct {
	// CurrentModel is the most advanced publicly known model at the claim's
	// date. Always set.
	CurrentModel string `json:"currentModel"`

	// BenchmarkName and BenchmarkScore describe the best known score on a
	// headline benchmark at the claim's date.
	BenchmarkName  *string  `json:"benchmarkName,omitempty"`
	BenchmarkScore *float64 `json:"benchmarkScore,omitempty"`

	// Closing share prices of the AI-exposed majors for the claim's quarter.
	NvdaPrice *float64 `json:"nvdaPrice,omitempty"`
	MsftPrice *float64 `json:"msftPrice,omitempty"`
	GoogPrice *float64 `json:"googPrice,omitempty"`

	// Milestone names a capability milestone reached near the claim's date.
	Milestone *string `json:"milestone,omitempty"`

	// Note carries free-form context.
	Note *string `json:"note,omitempty"`
}

// DiscoveryMetadata records how the pipeline found and judged a claim.
type DiscoveryMetadata struct {
	DiscoveredAt     time.Time  `json:"discoveredAt"`
	Confidence       float64    `json:"confidence"`
	NotabilityReason string     `json:"notabilityReason"`
	SourceType       SourceType `json:"sourceType"`
}

// ObituaryDraft is the unit of persistence: a pipeline-produced, not yet
// human-reviewed record pending insertion into the content store.
//
// Invariant: Slug is URL-safe, non-empty, and unique within the store at
// write time.
type ObituaryDraft struct {
	// Claim is the normalized claim text.
	Claim string `json:"claim"`

	// Source names who made the claim (author or publication).
	Source string `json:"source"`

	// SourceURL links to the original content and is the dedup key across
	// repeated pipeline runs.
	SourceURL string `json:"sourceUrl"`

	// Date is the claim's publication date, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// Categories are taxonomy categories, seeded from the classifier's
	// suggestion.
	Categories []string `json:"categories"`

	// Context is the historical capability snapshot for the claim's date.
	Context ContextMetadata `json:"context"`

	// Slug is the URL-safe identifier derived from the claim text.
	Slug string `json:"slug"`

	// Discovery records pipeline provenance.
	Discovery DiscoveryMetadata `json:"discoveryMetadata"`
}
