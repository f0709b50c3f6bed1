package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiobituaries/discovery/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCollector returns a fixed candidate set, or fails systemically.
type fakeCollector struct {
	candidates []domain.Candidate
	err        error
	panicMsg   string
}

func (f *fakeCollector) Collect(_ context.Context, _ time.Time) ([]domain.Candidate, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.candidates, f.err
}

// passGate passes everything through and counts invocations.
type passGate struct {
	calls int
}

func (g *passGate) Filter(candidates []domain.Candidate) []domain.Candidate {
	g.calls++
	return candidates
}

// dropGate drops everything.
type dropGate struct{}

func (dropGate) Filter(_ []domain.Candidate) []domain.Candidate { return nil }

// fakeClassifier approves every candidate with a fixed confidence.
type fakeClassifier struct {
	calls      int
	confidence float64
}

func (f *fakeClassifier) Classify(_ context.Context, candidates []domain.Candidate) ([]domain.ClassifiedCandidate, []domain.RunError, error) {
	f.calls++
	out := make([]domain.ClassifiedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = domain.ClassifiedCandidate{
			Candidate: c,
			Result: domain.ClassificationResult{
				IsAIDoomClaim:   true,
				ClaimConfidence: f.confidence,
				ExtractedClaim:  "AI is dead",
				Recommendation:  domain.RecommendApprove,
			},
		}
	}
	return out, nil, nil
}

// memStore is an in-memory content store with per-URL failure injection.
type memStore struct {
	mu      sync.Mutex
	byURL   map[string]string
	nextID  int
	failURL string
	listErr error
}

func newMemStore() *memStore {
	return &memStore{byURL: make(map[string]string)}
}

func (s *memStore) ExistingSourceURLs(_ context.Context, urls []string) (map[string]bool, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[string]bool)
	for _, u := range urls {
		if _, ok := s.byURL[u]; ok {
			existing[u] = true
		}
	}
	return existing, nil
}

func (s *memStore) CreateDraft(_ context.Context, draft *domain.ObituaryDraft) (string, error) {
	if draft.SourceURL == s.failURL {
		return "", errors.New("store rejected draft")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byURL[draft.SourceURL]; ok {
		return "", errors.New("duplicate sourceUrl")
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID+122)
	s.byURL[draft.SourceURL] = id
	return id, nil
}

func candidate(url string) domain.Candidate {
	return domain.Candidate{
		URL:         url,
		Title:       "AI is dead",
		Text:        "AI is dead and everyone knows it, the bubble is done.",
		PublishedAt: time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
		SourceType:  domain.SourceNews,
	}
}

// One approved candidate flows through every stage into the store.
func TestRun_SingleApprovedCandidate(t *testing.T) {
	store := newMemStore()
	runner := New(
		&fakeCollector{candidates: []domain.Candidate{candidate("https://wired.com/a")}},
		&passGate{},
		&fakeClassifier{confidence: 0.9},
		store,
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Discovered)
	assert.Equal(t, 1, result.Filtered)
	assert.Equal(t, 1, result.Classified)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"doc-123"}, result.CreatedIDs)
	assert.Empty(t, result.Errors)
	assert.False(t, result.Timestamp.IsZero())
}

// Zero discovered candidates short-circuit before the quality gate runs.
func TestRun_EmptyCollectorShortCircuits(t *testing.T) {
	gate := &passGate{}
	cls := &fakeClassifier{confidence: 0.9}
	runner := New(&fakeCollector{}, gate, cls, newMemStore(), testLogger())

	result, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Discovered)
	assert.Equal(t, 0, result.Filtered)
	assert.Equal(t, 0, result.Classified)
	assert.Equal(t, 0, result.Created)
	assert.Zero(t, gate.calls)
	assert.Zero(t, cls.calls)
}

// A candidate dropped by the gate never reaches the classifier.
func TestRun_GateDropShortCircuits(t *testing.T) {
	cls := &fakeClassifier{confidence: 0.9}
	runner := New(
		&fakeCollector{candidates: []domain.Candidate{candidate("https://unknown.example.com/a")}},
		dropGate{},
		cls,
		newMemStore(),
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Discovered)
	assert.Equal(t, 0, result.Filtered)
	assert.Equal(t, 0, result.Classified)
	assert.Zero(t, cls.calls)
}

// A systemic collector failure is terminal: no report at all.
func TestRun_CollectorErrorIsTerminal(t *testing.T) {
	runner := New(
		&fakeCollector{err: errors.New("search infrastructure exploded")},
		&passGate{},
		&fakeClassifier{},
		newMemStore(),
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "search infrastructure exploded")
}

// A panicking collector is caught by the run's fault boundary.
func TestRun_CollectorPanicIsTerminal(t *testing.T) {
	runner := New(
		&fakeCollector{panicMsg: "nil pointer somewhere"},
		&passGate{},
		&fakeClassifier{},
		newMemStore(),
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "nil pointer somewhere")
}

// Running twice over overlapping candidates never duplicates records.
func TestRun_Idempotent(t *testing.T) {
	store := newMemStore()
	first := []domain.Candidate{candidate("https://wired.com/a"), candidate("https://wired.com/b")}
	overlap := []domain.Candidate{candidate("https://wired.com/b"), candidate("https://wired.com/c")}

	runner := New(&fakeCollector{candidates: first}, &passGate{}, &fakeClassifier{confidence: 0.8}, store, testLogger())
	result1, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, result1.Created)

	runner2 := New(&fakeCollector{candidates: overlap}, &passGate{}, &fakeClassifier{confidence: 0.8}, store, testLogger())
	result2, err := runner2.Run(context.Background(), time.Now())
	require.NoError(t, err)

	// only the new URL is created the second time
	assert.Equal(t, 1, result2.Created)
	assert.Len(t, store.byURL, 3)
}

// One draft's write failure doesn't block the rest of the batch.
func TestRun_PerItemPersistenceFailure(t *testing.T) {
	store := newMemStore()
	store.failURL = "https://wired.com/b"

	runner := New(
		&fakeCollector{candidates: []domain.Candidate{
			candidate("https://wired.com/a"),
			candidate("https://wired.com/b"),
			candidate("https://wired.com/c"),
		}},
		&passGate{},
		&fakeClassifier{confidence: 0.8},
		store,
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Classified)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.StagePublish, result.Errors[0].Stage)
	assert.Equal(t, "https://wired.com/b", result.Errors[0].URL)
}

// A failing dedup query is a systemic publisher failure.
func TestRun_DedupQueryErrorIsTerminal(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("store unreachable")

	runner := New(
		&fakeCollector{candidates: []domain.Candidate{candidate("https://wired.com/a")}},
		&passGate{},
		&fakeClassifier{confidence: 0.8},
		store,
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.Nil(t, result)
}

// Counts never increase stage over stage.
func TestRun_MonotonicCounts(t *testing.T) {
	store := newMemStore()
	runner := New(
		&fakeCollector{candidates: []domain.Candidate{
			candidate("https://wired.com/a"),
			candidate("https://wired.com/b"),
		}},
		&passGate{},
		&fakeClassifier{confidence: 0.7},
		store,
		testLogger(),
	)

	result, err := runner.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Discovered, result.Filtered)
	assert.GreaterOrEqual(t, result.Filtered, result.Classified)
	assert.GreaterOrEqual(t, result.Classified, result.Created)
}

func TestUnconfiguredStore(t *testing.T) {
	store := UnconfiguredStore{}

	existing, err := store.ExistingSourceURLs(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, existing)

	_, err = store.CreateDraft(context.Background(), &domain.ObituaryDraft{})
	assert.ErrorIs(t, err, ErrStoreUnconfigured)
}
