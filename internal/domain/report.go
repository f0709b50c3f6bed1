package domain

import "time"

// Stage names for run error attribution.
const (
	StageCollect  = "collect"
	StageClassify = "classify"
	StagePublish  = "publish"
)

// RunError describes a recovered per-item failure. It carries enough context
// to diagnose the failure without leaking unvetted candidate text.
type RunError struct {
	// Stage is the pipeline stage where the failure occurred.
	Stage string `json:"stage"`

	// URL identifies the affected candidate, when there is one.
	URL string `json:"url,omitempty"`

	// Message is the underlying error message.
	Message string `json:"message"`
}

// RunResult is the pipeline's final report for a single invocation. It is
// returned to the caller and never persisted.
type RunResult struct {
	// Discovered is the number of raw candidates returned by the collector.
	Discovered int `json:"discovered"`

	// Filtered is the number of candidates that survived the quality gate.
	Filtered int `json:"filtered"`

	// Classified is the number of candidates the classifier approved.
	Classified int `json:"classified"`

	// Created is the number of drafts written to the content store.
	Created int `json:"created"`

	// CreatedIDs are the store-assigned document IDs of the created drafts.
	CreatedIDs []string `json:"createdIds"`

	// Errors are the recovered per-item failures accumulated across stages.
	Errors []RunError `json:"errors"`

	// Timestamp is when the run finished.
	Timestamp time.Time `json:"timestamp"`
}
