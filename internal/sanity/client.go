// Package sanity is a minimal client for the Sanity content store's HTTP
// API, covering what the draft publisher needs: creating obituary draft
// documents and querying existing source URLs for deduplication.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/retry"
)

const apiVersion = "v2021-10-21"

// documentType is the content type of persisted drafts.
const documentType = "obituary"

// Config holds connection settings for the Sanity API.
type Config struct {
	// ProjectID is the Sanity project identifier.
	ProjectID string

	// Dataset is the target dataset, e.g. "production".
	Dataset string

	// Token is a write-capable API token.
	Token string

	// BaseURL overrides the derived https://<project>.api.sanity.io
	// endpoint. Used in tests.
	BaseURL string
}

// Client talks to the Sanity HTTP API.
type Client struct {
	baseURL    string
	dataset    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Sanity client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	return &Client{
		baseURL: baseURL,
		dataset: cfg.Dataset,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// existingQuery finds stored obituaries matching any of the given source
// URLs.
const existingQuery = `*[_type == "obituary" && sourceUrl in $urls]{sourceUrl}`

// ExistingSourceURLs reports which of the given URLs already have a stored
// obituary document. The query is read-only, so it is retried on transient
// failures.
func (c *Client) ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return map[string]bool{}, nil
	}

	body := queryRequest{
		Query:  existingQuery,
		Params: map[string]any{"urls": urls},
	}

	var resp queryResponse
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		return c.post(ctx, "/"+apiVersion+"/data/query/"+c.dataset, body, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("query existing source urls: %w", err)
	}

	existing := make(map[string]bool, len(resp.Result))
	for _, doc := range resp.Result {
		existing[doc.SourceURL] = true
	}
	return existing, nil
}

// CreateDraft persists one obituary draft and returns the document ID the
// store assigned. Creates are not retried: the mutation is not idempotent and
// the pipeline tolerates a lost write better than a duplicated one.
func (c *Client) CreateDraft(ctx context.Context, draft *domain.ObituaryDraft) (string, error) {
	body := mutateRequest{
		Mutations: []mutation{
			{Create: &obituaryDocument{Type: documentType, ObituaryDraft: *draft}},
		},
	}

	var resp mutateResponse
	if err := c.post(ctx, "/"+apiVersion+"/data/mutate/"+c.dataset+"?returnIds=true", body, &resp); err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("create draft: mutation returned no results")
	}
	return resp.Results[0].ID, nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return retry.Stop(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return retry.Stop(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return retry.Stop(fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return retry.Stop(fmt.Errorf("unmarshal response: %w", err))
		}
	}
	return nil
}

// obituaryDocument is an obituary draft with the Sanity document type
// attached.
type obituaryDocument struct {
	Type string `json:"_type"`
	domain.ObituaryDraft
}

type mutation struct {
	Create *obituaryDocument `json:"create,omitempty"`
}

type mutateRequest struct {
	Mutations []mutation `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

type queryRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

type queryResponse struct {
	Result []struct {
		SourceURL string `json:"sourceUrl"`
	} `json:"result"`
}
