package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/retry"
)

const defaultXBaseURL = "https://api.twitter.com"

// xQuery matches short-form posts asserting that AI is dead, overhyped, or a
// bubble. Retweets are excluded so each claim is attributed to its author.
const xQuery = `("AI is dead" OR "AI winter" OR "AI bubble" OR "AI is over" OR "AI is overhyped" OR "deep learning is hitting a wall" OR "AGI is never") -is:retweet lang:en`

// XSource searches the X API v2 recent search endpoint for candidate posts.
type XSource struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
}

// NewXSource creates an X search source. If baseURL is empty, the public API
// endpoint is used. An empty bearer token leaves the source unconfigured.
func NewXSource(baseURL, bearerToken string) *XSource {
	if baseURL == "" {
		baseURL = defaultXBaseURL
	}
	return &XSource{
		baseURL:     baseURL,
		bearerToken: bearerToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *XSource) Name() string { return "x" }

func (s *XSource) Configured() bool { return s.bearerToken != "" }

// Search queries recent posts since the given time and maps them to tweet
// candidates with author metadata attached.
func (s *XSource) Search(ctx context.Context, since time.Time) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("query", xQuery)
	q.Set("start_time", since.UTC().Format(time.RFC3339))
	q.Set("max_results", "50")
	q.Set("tweet.fields", "created_at,author_id,public_metrics")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "name,username,description,verified,public_metrics")

	var result recentSearchResponse
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		return s.get(ctx, "/2/tweets/search/recent?"+q.Encode(), &result)
	})
	if err != nil {
		return nil, fmt.Errorf("recent search: %w", err)
	}

	users := make(map[string]*xUser, len(result.Includes.Users))
	for i := range result.Includes.Users {
		users[result.Includes.Users[i].ID] = &result.Includes.Users[i]
	}

	candidates := make([]domain.Candidate, 0, len(result.Data))
	for _, t := range result.Data {
		c := domain.Candidate{
			URL:        tweetURL(users, t.AuthorID, t.ID),
			Title:      truncate(t.Text, 80),
			Text:       t.Text,
			SourceType: domain.SourceTweet,
		}
		if parsed, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			c.PublishedAt = parsed
		}
		if likes := t.PublicMetrics.LikeCount; likes > 0 {
			score := float64(likes)
			c.Score = &score
		}
		if u := users[t.AuthorID]; u != nil {
			followers := u.PublicMetrics.FollowersCount
			c.Author = &domain.AuthorMetadata{
				Name:      u.Name,
				Handle:    u.Username,
				Bio:       u.Description,
				Followers: &followers,
				Verified:  u.Verified,
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s *XSource) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return retry.Stop(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+s.bearerToken)

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
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return retry.Stop(fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return retry.Stop(fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

func tweetURL(users map[string]*xUser, authorID, tweetID string) string {
	username := "i"
	if u := users[authorID]; u != nil && u.Username != "" {
		username = u.Username
	}
	return fmt.Sprintf("https://x.com/%s/status/%s", username, tweetID)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

type recentSearchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		AuthorID      string `json:"author_id"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []xUser `json:"users"`
	} `json:"includes"`
}

type xUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Description   string `json:"description"`
	Verified      bool   `json:"verified"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
	} `json:"public_metrics"`
}
