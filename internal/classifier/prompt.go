package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aiobituaries/discovery/internal/domain"
)

const systemPrompt = `You are a content curator for an archive that tracks public claims that AI is dead, overhyped, doomed, or a bubble. You judge whether a piece of content contains such a claim and whether its author is notable enough for the claim to be worth archiving. You respond with a single JSON object and nothing else.`

const promptTemplate = `Analyze the following content.

Source type: %s
Author: %s
Title: %s
Text:
%s

Determine:
1. Does the text assert that AI is failing, dead, a bubble about to burst, or fundamentally overhyped? (Reporting on others' claims counts only if the piece endorses the claim.)
2. How confident are you, from 0.0 to 1.0?
3. Is the author notable (public figure, recognized expert, or major publication)? Why?
4. Extract and lightly normalize the central claim as one quotable sentence.
5. Suggest one category: bubble, winter, plateau, jobs, agi-skeptic, or overhyped.
6. Recommend a disposition: "approve" (clear claim, notable author), "review" (borderline, needs a human), or "reject".

Respond with exactly this JSON shape:
{"is_ai_doom_claim": bool, "claim_confidence": number, "is_notable": bool, "notability_reason": string, "extracted_claim": string, "suggested_category": string, "recommendation": "approve"|"review"|"reject"}`

func classificationPrompt(c *domain.Candidate) string {
	author := "unknown"
	if c.Author != nil {
		author = c.Author.Name
		if c.Author.Handle != "" {
			author += " (@" + c.Author.Handle + ")"
		}
	}
	return fmt.Sprintf(promptTemplate, c.SourceType, author, c.Title, c.Text)
}

// wireResult is the JSON shape the model is instructed to return.
type wireResult struct {
	IsAIDoomClaim     bool    `json:"is_ai_doom_claim"`
	ClaimConfidence   float64 `json:"claim_confidence"`
	IsNotable         bool    `json:"is_notable"`
	NotabilityReason  string  `json:"notability_reason"`
	ExtractedClaim    string  `json:"extracted_claim"`
	SuggestedCategory string  `json:"suggested_category"`
	Recommendation    string  `json:"recommendation"`
}

// parseResult extracts the JSON object from a model response, tolerating
// markdown code fences and surrounding prose, and normalizes it into a
// classification result. Confidence is clamped to [0, 1]; an unknown
// recommendation downgrades to review so nothing unvetted auto-publishes.
func parseResult(raw string) (*domain.ClassificationResult, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in classifier response")
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return nil, fmt.Errorf("parse classifier response: %w", err)
	}

	confidence := wire.ClaimConfidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	rec := domain.Recommendation(wire.Recommendation)
	switch rec {
	case domain.RecommendApprove, domain.RecommendReview, domain.RecommendReject:
	default:
		rec = domain.RecommendReview
	}

	return &domain.ClassificationResult{
		IsAIDoomClaim:     wire.IsAIDoomClaim,
		ClaimConfidence:   confidence,
		IsNotable:         wire.IsNotable,
		NotabilityReason:  wire.NotabilityReason,
		ExtractedClaim:    strings.TrimSpace(wire.ExtractedClaim),
		SuggestedCategory: strings.TrimSpace(wire.SuggestedCategory),
		Recommendation:    rec,
	}, nil
}
