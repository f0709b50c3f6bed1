package gate

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiobituaries/discovery/internal/domain"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := New(DefaultRules())
	require.NoError(t, err)
	return g
}

func intPtr(n int) *int { return &n }

// longText is comfortably above the default minimum content length.
const longText = "AI is dead, the whole field has hit a wall and the money is about to run out for every lab chasing scale."

func newsCandidate(url string) domain.Candidate {
	return domain.Candidate{
		URL:        url,
		Title:      "The AI bubble is finally bursting",
		Text:       longText,
		SourceType: domain.SourceNews,
	}
}

func tweetCandidate(author *domain.AuthorMetadata) domain.Candidate {
	return domain.Candidate{
		URL:        "https://x.com/someone/status/123",
		Title:      "AI is dead",
		Text:       longText,
		Author:     author,
		SourceType: domain.SourceTweet,
	}
}

func TestFilter_SourceTrust(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name      string
		candidate domain.Candidate
		pass      bool
	}{
		{
			name:      "whitelisted news domain",
			candidate: newsCandidate("https://nytimes.com/2025/01/05/tech/ai-winter.html"),
			pass:      true,
		},
		{
			name:      "whitelisted news domain with www and mixed case",
			candidate: newsCandidate("https://WWW.WIRED.com/story/ai-bubble/"),
			pass:      true,
		},
		{
			name:      "unknown news domain",
			candidate: newsCandidate("https://ai-doom-blog.example.com/post/1"),
			pass:      false,
		},
		{
			name: "whitelisted handle",
			candidate: tweetCandidate(&domain.AuthorMetadata{
				Name: "Gary Marcus", Handle: "garymarcus", Followers: intPtr(100),
			}),
			pass: true,
		},
		{
			name: "whitelisted handle with @ and mixed case",
			candidate: tweetCandidate(&domain.AuthorMetadata{
				Name: "Gary Marcus", Handle: "@GaryMarcus", Followers: intPtr(100),
			}),
			pass: true,
		},
		{
			name:      "tweet with no author metadata",
			candidate: tweetCandidate(nil),
			pass:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Filter([]domain.Candidate{tt.candidate})
			if tt.pass {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilter_Notability(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name   string
		author domain.AuthorMetadata
		pass   bool
	}{
		{
			name:   "verified with moderate followers",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody1", Verified: true, Followers: intPtr(60_000)},
			pass:   true,
		},
		{
			name:   "verified below moderate threshold",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody2", Verified: true, Followers: intPtr(10_000)},
			pass:   false,
		},
		{
			name:   "unverified with high followers",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody3", Followers: intPtr(300_000)},
			pass:   true,
		},
		{
			name:   "relevant bio with moderate followers",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody4", Bio: "AI researcher at a university", Followers: intPtr(60_000)},
			pass:   true,
		},
		{
			name:   "relevant bio with few followers",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody5", Bio: "AI researcher", Followers: intPtr(500)},
			pass:   false,
		},
		{
			name:   "irrelevant bio with moderate followers",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody6", Bio: "dog photos", Followers: intPtr(60_000)},
			pass:   false,
		},
		{
			name:   "nil follower count",
			author: domain.AuthorMetadata{Name: "A", Handle: "nobody7", Verified: true},
			pass:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Filter([]domain.Candidate{tweetCandidate(&tt.author)})
			if tt.pass {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilter_ContentQuality(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name  string
		title string
		text  string
		pass  bool
	}{
		{name: "long body", text: longText, pass: true},
		{name: "too short", text: "AI is dead", pass: false},
		{name: "empty body falls back to long title", title: longText, text: "", pass: true},
		{name: "spam pattern", text: longText + " Click here to learn more!", pass: false},
		{name: "subscribe bait", text: longText + " Subscribe now for daily doom.", pass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newsCandidate("https://nytimes.com/a")
			c.Title = tt.title
			c.Text = tt.text
			got := g.Filter([]domain.Candidate{c})
			if tt.pass {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

// Filter must return a subset of its input with survivor order preserved.
func TestFilter_SubsetAndOrder(t *testing.T) {
	g := newTestGate(t)

	input := []domain.Candidate{
		newsCandidate("https://nytimes.com/first"),
		newsCandidate("https://spam.example.com/x"),
		newsCandidate("https://wired.com/second"),
		newsCandidate("https://theverge.com/third"),
	}

	got := g.Filter(input)
	require.Len(t, got, 3)
	assert.True(t, strings.HasSuffix(got[0].URL, "/first"))
	assert.True(t, strings.HasSuffix(got[1].URL, "/second"))
	assert.True(t, strings.HasSuffix(got[2].URL, "/third"))
}

func TestLoadRules_FillsDefaults(t *testing.T) {
	path := t.TempDir() + "/rules.yaml"
	require.NoError(t, os.WriteFile(path, []byte("handles:\n  - onlyme\nmoderate_followers: 1000\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"onlyme"}, rules.Handles)
	assert.Equal(t, 1000, rules.ModerateFollowers)
	// unset fields keep the defaults
	assert.Equal(t, DefaultRules().HighFollowers, rules.HighFollowers)
	assert.NotEmpty(t, rules.Tier1Publications)
	assert.NotEmpty(t, rules.SpamPatterns)
}
