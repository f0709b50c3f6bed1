package domain

import "time"

// SourceType identifies which kind of upstream source produced a candidate.
type SourceType string

const (
	SourceTweet SourceType = "tweet"
	SourceNews  SourceType = "news"
)

// AuthorMetadata carries author details for tweet-sourced candidates. It is
// only consulted by the quality gate's notability heuristic.
type AuthorMetadata struct {
	// Name is the author's display name.
	Name string

	// Handle is the author's username, without the leading @. Empty for
	// sources that don't expose one.
	Handle string

	// Bio is the author's profile description, if available.
	Bio string

	// Followers is the author's follower count. Nil when the source did not
	// return one.
	Followers *int

	// Verified reports whether the author's account is verified.
	Verified bool
}

// Candidate represents raw discovered content that has not yet been judged
// to be a genuine AI-skepticism claim. Created by the collector; immutable
// afterward.
type Candidate struct {
	// URL is the canonical link to the content. It is the natural key used
	// for deduplication against the content store.
	URL string

	// Title is the headline (news) or a short label (tweets).
	Title string

	// Text is the content body. May be empty for headline-only articles.
	Text string

	// PublishedAt is when the content was published upstream.
	PublishedAt time.Time

	// Author is present for tweet candidates, nil for news.
	Author *AuthorMetadata

	// SourceType records which source category produced this candidate.
	SourceType SourceType

	// Score is an optional source-assigned relevance or engagement score.
	Score *float64
}
