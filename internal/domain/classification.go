package domain

// Recommendation is the classifier's disposition for a candidate.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendReject  Recommendation = "reject"
)

// ClassificationResult is the structured verdict produced for exactly one
// candidate by the external text-classification capability.
type ClassificationResult struct {
	// IsAIDoomClaim reports whether the text asserts AI failure, death, or
	// bubble collapse.
	IsAIDoomClaim bool

	// ClaimConfidence is the classifier's confidence in IsAIDoomClaim,
	// always within [0, 1].
	ClaimConfidence float64

	// IsNotable reports whether the claim's author is notable enough for the
	// claim to be worth tracking.
	IsNotable bool

	// NotabilityReason explains the notability judgment.
	NotabilityReason string

	// ExtractedClaim is the normalized claim text suitable for display.
	ExtractedClaim string

	// SuggestedCategory is the taxonomy category the classifier proposes.
	SuggestedCategory string

	// Recommendation is approve, review, or reject.
	Recommendation Recommendation
}

// ClassifiedCandidate pairs a candidate with its classification result. It is
// created by the classifier and consumed by the enricher.
type ClassifiedCandidate struct {
	Candidate Candidate
	Result    ClassificationResult
}
