package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/retry"
)

const defaultNewsBaseURL = "https://newsapi.org"

// newsQuery matches coverage declaring AI dead, stalled, or a bursting
// bubble.
const newsQuery = `"AI bubble" OR "AI winter" OR "AI is overhyped" OR "AI hype" OR "end of AI" OR "AI slowdown"`

// NewsSource searches a news API's everything endpoint, restricted to the
// whitelisted publication domains so the quality gate's source trust check
// and the upstream query agree.
type NewsSource struct {
	baseURL    string
	apiKey     string
	domains    []string
	httpClient *http.Client
}

// NewNewsSource creates a news search source over the given publication
// domains. If baseURL is empty, the public API endpoint is used. An empty API
// key leaves the source unconfigured.
func NewNewsSource(baseURL, apiKey string, domains []string) *NewsSource {
	if baseURL == "" {
		baseURL = defaultNewsBaseURL
	}
	return &NewsSource{
		baseURL:    baseURL,
		apiKey:     apiKey,
		domains:    domains,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *NewsSource) Name() string { return "news" }

func (s *NewsSource) Configured() bool { return s.apiKey != "" }

// Search queries articles published since the given time and maps them to
// news candidates.
func (s *NewsSource) Search(ctx context.Context, since time.Time) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("q", newsQuery)
	q.Set("from", since.UTC().Format(time.RFC3339))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "50")
	if len(s.domains) > 0 {
		q.Set("domains", strings.Join(s.domains, ","))
	}

	var result everythingResponse
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		return s.get(ctx, "/v2/everything?"+q.Encode(), &result)
	})
	if err != nil {
		return nil, fmt.Errorf("everything search: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("news API returned status %q: %s", result.Status, result.Message)
	}

	candidates := make([]domain.Candidate, 0, len(result.Articles))
	for _, a := range result.Articles {
		if a.URL == "" {
			continue
		}
		text := a.Content
		if text == "" {
			text = a.Description
		}
		c := domain.Candidate{
			URL:        a.URL,
			Title:      a.Title,
			Text:       text,
			SourceType: domain.SourceNews,
		}
		if parsed, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			c.PublishedAt = parsed
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s *NewsSource) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return retry.Stop(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return retry.Stop(fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return retry.Stop(fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}
