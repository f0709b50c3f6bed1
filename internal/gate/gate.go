// Package gate implements the quality gate: cheap, deterministic heuristics
// that discard low-value candidates before expensive classification. It does
// no I/O, so it can run ahead of every classifier call, and it drops failing
// candidates silently rather than recording their content anywhere.
package gate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aiobituaries/discovery/internal/domain"
)

// Gate holds the compiled filtering state.
type Gate struct {
	publications map[string]struct{}
	handles      map[string]struct{}
	bioKeywords  []string
	spamPatterns []*regexp.Regexp

	moderateFollowers int
	highFollowers     int
	minContentLength  int
}

// New compiles the given rules into a Gate.
func New(rules Rules) (*Gate, error) {
	g := &Gate{
		publications:      make(map[string]struct{}),
		handles:           make(map[string]struct{}),
		moderateFollowers: rules.ModerateFollowers,
		highFollowers:     rules.HighFollowers,
		minContentLength:  rules.MinContentLength,
	}

	for _, d := range rules.Tier1Publications {
		g.publications[normalizeDomain(d)] = struct{}{}
	}
	for _, d := range rules.Tier2Publications {
		g.publications[normalizeDomain(d)] = struct{}{}
	}
	for _, h := range rules.Handles {
		g.handles[normalizeHandle(h)] = struct{}{}
	}
	for _, kw := range rules.BioKeywords {
		g.bioKeywords = append(g.bioKeywords, strings.ToLower(kw))
	}

	for _, p := range rules.SpamPatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile spam pattern %q: %w", p, err)
		}
		g.spamPatterns = append(g.spamPatterns, re)
	}

	return g, nil
}

// Filter returns the candidates that pass the gate, in their original order.
// A candidate passes if it comes from a whitelisted source or a notable
// author, and its content passes the quality check.
func (g *Gate) Filter(candidates []domain.Candidate) []domain.Candidate {
	var passed []domain.Candidate
	for _, c := range candidates {
		if g.trusted(&c) && g.contentOK(&c) {
			passed = append(passed, c)
		}
	}
	return passed
}

func (g *Gate) trusted(c *domain.Candidate) bool {
	switch c.SourceType {
	case domain.SourceNews:
		_, ok := g.publications[domainOf(c.URL)]
		return ok
	case domain.SourceTweet:
		if c.Author == nil {
			return false
		}
		if _, ok := g.handles[normalizeHandle(c.Author.Handle)]; ok {
			return true
		}
		return g.notable(c.Author)
	default:
		return false
	}
}

// notable applies the follower/verification/bio heuristic to tweet authors
// that are not on the handle whitelist.
func (g *Gate) notable(a *domain.AuthorMetadata) bool {
	followers := 0
	if a.Followers != nil {
		followers = *a.Followers
	}

	if a.Verified && followers >= g.moderateFollowers {
		return true
	}
	if followers >= g.highFollowers {
		return true
	}
	return g.bioRelevant(a.Bio) && followers >= g.moderateFollowers
}

func (g *Gate) bioRelevant(bio string) bool {
	if bio == "" {
		return false
	}
	lower := strings.ToLower(bio)
	for _, kw := range g.bioKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (g *Gate) contentOK(c *domain.Candidate) bool {
	body := c.Text
	if strings.TrimSpace(body) == "" {
		body = c.Title
	}

	if utf8.RuneCountInString(strings.TrimSpace(body)) < g.minContentLength {
		return false
	}
	for _, re := range g.spamPatterns {
		if re.MatchString(body) {
			return false
		}
	}
	return true
}

// domainOf extracts the lowercased host from a URL, stripping a leading www.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return normalizeDomain(u.Host)
}

func normalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
