package gate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the quality gate's curated whitelists and thresholds. The
// zero-value fields fall back to the built-in defaults, so a rules file only
// needs to override what it changes.
type Rules struct {
	// Tier1Publications and Tier2Publications are trusted news domains.
	// Tier 1 is the established press, tier 2 the reputable tech press.
	Tier1Publications []string `yaml:"tier1_publications"`
	Tier2Publications []string `yaml:"tier2_publications"`

	// Handles are author usernames whose tweets bypass the notability
	// heuristic.
	Handles []string `yaml:"handles"`

	// ModerateFollowers and HighFollowers are the notability thresholds.
	ModerateFollowers int `yaml:"moderate_followers"`
	HighFollowers     int `yaml:"high_followers"`

	// BioKeywords mark an author bio as domain-relevant.
	BioKeywords []string `yaml:"bio_keywords"`

	// MinContentLength is the minimum body (or title) length in runes.
	MinContentLength int `yaml:"min_content_length"`

	// SpamPatterns are case-insensitive regular expressions that disqualify
	// content.
	SpamPatterns []string `yaml:"spam_patterns"`
}

// DefaultRules returns the built-in curated rules.
func DefaultRules() Rules {
	return Rules{
		Tier1Publications: []string{
			"nytimes.com", "wsj.com", "ft.com", "economist.com",
			"bloomberg.com", "reuters.com", "washingtonpost.com",
			"theguardian.com", "theatlantic.com", "newyorker.com",
		},
		Tier2Publications: []string{
			"wired.com", "theverge.com", "arstechnica.com",
			"technologyreview.com", "theinformation.com", "semafor.com",
			"axios.com", "fortune.com", "forbes.com", "businessinsider.com",
			"cnbc.com", "techcrunch.com", "spectrum.ieee.org",
		},
		Handles: []string{
			"garymarcus", "emilymbender", "davidsacks", "tsarnick",
			"AISafetyMemes", "pmarca", "sama", "ylecun", "fchollet",
		},
		ModerateFollowers: 50_000,
		HighFollowers:     250_000,
		BioKeywords: []string{
			"ai", "artificial intelligence", "machine learning", "ml",
			"professor", "researcher", "scientist", "economist",
			"founder", "ceo", "cto", "investor", "engineer", "journalist",
			"author", "phd",
		},
		MinContentLength: 40,
		SpamPatterns: []string{
			`click here`,
			`subscribe now`,
			`sign up (?:now|today)`,
			`limited time`,
			`\d+% off`,
			`buy now`,
			`link in bio`,
			`giveaway`,
			`promo code`,
		},
	}
}

// LoadRules reads a YAML rules file and fills unset fields from the defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules yaml: %w", err)
	}

	defaults := DefaultRules()
	if len(rules.Tier1Publications) == 0 {
		rules.Tier1Publications = defaults.Tier1Publications
	}
	if len(rules.Tier2Publications) == 0 {
		rules.Tier2Publications = defaults.Tier2Publications
	}
	if len(rules.Handles) == 0 {
		rules.Handles = defaults.Handles
	}
	if rules.ModerateFollowers == 0 {
		rules.ModerateFollowers = defaults.ModerateFollowers
	}
	if rules.HighFollowers == 0 {
		rules.HighFollowers = defaults.HighFollowers
	}
	if len(rules.BioKeywords) == 0 {
		rules.BioKeywords = defaults.BioKeywords
	}
	if rules.MinContentLength == 0 {
		rules.MinContentLength = defaults.MinContentLength
	}
	if len(rules.SpamPatterns) == 0 {
		rules.SpamPatterns = defaults.SpamPatterns
	}
	return rules, nil
}
