// Package classifier delegates candidate judgment to the Anthropic Messages
// API. Calls are dispatched by a fixed-size worker pool behind a shared rate
// limiter so larger batches overlap latency without violating the upstream
// rate limits, and a failed call drops only its own candidate.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/retry"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.anthropic.com"
	DefaultModel       = "claude-3-5-haiku-latest"
	DefaultTimeout     = 60 * time.Second
	DefaultConcurrency = 4

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic classifier.
type Config struct {
	// APIKey is the Anthropic API key. Empty leaves the classifier
	// unconfigured: it classifies nothing rather than erroring.
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the classification model (default: claude-3-5-haiku-latest).
	Model string

	// Concurrency is the maximum number of in-flight classification calls
	// (default: 4).
	Concurrency int

	// RequestsPerSecond caps the sustained call rate (default: 2).
	RequestsPerSecond float64
}

// Anthropic classifies candidates via the Anthropic Messages API.
type Anthropic struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewAnthropic creates a classifier from the given configuration.
func NewAnthropic(cfg Config, logger *slog.Logger) *Anthropic {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	return &Anthropic{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		concurrency: cfg.Concurrency,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Concurrency),
		logger:      logger,
	}
}

// Configured reports whether the classifier has an API key.
func (a *Anthropic) Configured() bool { return a.apiKey != "" }

// Classify produces one classification result per candidate. Per-candidate
// failures are returned as run errors, identified by candidate URL only, and
// do not abort the rest of the batch. Survivors keep the input order.
func (a *Anthropic) Classify(ctx context.Context, candidates []domain.Candidate) ([]domain.ClassifiedCandidate, []domain.RunError, error) {
	if !a.Configured() {
		a.logger.Warn("classifier unconfigured, skipping classification")
		return nil, nil, nil
	}

	classified := make([]*domain.ClassifiedCandidate, len(candidates))
	failures := make([]*domain.RunError, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < a.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result, err := a.classifyOne(ctx, &candidates[i])
				if err != nil {
					failures[i] = &domain.RunError{
						Stage:   domain.StageClassify,
						URL:     candidates[i].URL,
						Message: err.Error(),
					}
					continue
				}
				classified[i] = &domain.ClassifiedCandidate{
					Candidate: candidates[i],
					Result:    *result,
				}
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var results []domain.ClassifiedCandidate
	var errs []domain.RunError
	for i := range candidates {
		if classified[i] != nil {
			results = append(results, *classified[i])
		}
		if failures[i] != nil {
			errs = append(errs, *failures[i])
		}
	}
	return results, errs, nil
}

func (a *Anthropic) classifyOne(ctx context.Context, c *domain.Candidate) (*domain.ClassificationResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw string
	err := retry.Do(ctx, 3, time.Second, func() error {
		var sendErr error
		raw, sendErr = a.send(ctx, classificationPrompt(c))
		return sendErr
	})
	if err != nil {
		return nil, err
	}

	return parseResult(raw)
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *Anthropic) send(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model: a.model,
		Messages: []messagesMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: 1024,
		System:    systemPrompt,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", retry.Stop(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", retry.Stop(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return "", retry.Stop(fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body)))
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// FilterApproved keeps only the candidates the classifier recommended for
// automatic approval. Claims needing human judgment or rejected outright are
// dropped from the automated pipeline.
func FilterApproved(classified []domain.ClassifiedCandidate) []domain.ClassifiedCandidate {
	var approved []domain.ClassifiedCandidate
	for _, cc := range classified {
		if cc.Result.Recommendation == domain.RecommendApprove {
			approved = append(approved, cc)
		}
	}
	return approved
}
