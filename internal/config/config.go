package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the discovery service.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// TriggerSecret is the shared secret required by the discovery trigger
	// endpoint.
	TriggerSecret string

	// AllowInsecureTrigger skips trigger authentication when no secret is
	// configured. Intended for local development only.
	AllowInsecureTrigger bool

	// XBearerToken authenticates against the X API v2 recent search. Empty
	// means the tweet source is unconfigured and contributes no candidates.
	XBearerToken string

	// NewsAPIKey authenticates against the news search API. Empty means the
	// news source is unconfigured and contributes no candidates.
	NewsAPIKey string

	// AnthropicAPIKey authenticates against the classification capability.
	AnthropicAPIKey string

	// AnthropicModel overrides the default classification model.
	AnthropicModel string

	// SanityProjectID, SanityDataset, and SanityToken configure the hosted
	// content store. All three must be set for the Sanity store to be used.
	SanityProjectID string
	SanityDataset   string
	SanityToken     string

	// SQLitePath configures the self-hosted content store. Used when the
	// Sanity store is not configured.
	SQLitePath string

	// Lookback is how far back each discovery run searches.
	Lookback time.Duration

	// Schedule is an optional cron expression for in-process scheduled runs.
	Schedule string

	// RulesPath is an optional YAML file overriding the quality gate's
	// built-in whitelists and thresholds.
	RulesPath string
}

// SearchConfigured reports whether at least one search source has credentials.
func (c *Config) SearchConfigured() bool {
	return c.XBearerToken != "" || c.NewsAPIKey != ""
}

// ClassificationConfigured reports whether the classification capability has
// credentials.
func (c *Config) ClassificationConfigured() bool {
	return c.AnthropicAPIKey != ""
}

// SanityConfigured reports whether the hosted content store is fully
// configured.
func (c *Config) SanityConfigured() bool {
	return c.SanityProjectID != "" && c.SanityDataset != "" && c.SanityToken != ""
}

// PersistenceConfigured reports whether any content store is configured.
func (c *Config) PersistenceConfigured() bool {
	return c.SanityConfigured() || c.SQLitePath != ""
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	lookback := 24 * time.Hour
	if l := os.Getenv("DISCOVERY_LOOKBACK"); l != "" {
		var err error
		lookback, err = time.ParseDuration(l)
		if err != nil {
			return nil, fmt.Errorf("invalid DISCOVERY_LOOKBACK: %w", err)
		}
	}

	allowInsecure := os.Getenv("DISCOVERY_ALLOW_INSECURE") == "true"

	secret := os.Getenv("DISCOVERY_SECRET")
	if secret == "" && !allowInsecure {
		return nil, fmt.Errorf("DISCOVERY_SECRET is required (set DISCOVERY_ALLOW_INSECURE=true to skip auth in local development)")
	}

	return &Config{
		Port:                 port,
		TriggerSecret:        secret,
		AllowInsecureTrigger: allowInsecure,
		XBearerToken:         os.Getenv("X_BEARER_TOKEN"),
		NewsAPIKey:           os.Getenv("NEWS_API_KEY"),
		AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:       os.Getenv("ANTHROPIC_MODEL"),
		SanityProjectID:      os.Getenv("SANITY_PROJECT_ID"),
		SanityDataset:        os.Getenv("SANITY_DATASET"),
		SanityToken:          os.Getenv("SANITY_TOKEN"),
		SQLitePath:           os.Getenv("SQLITE_PATH"),
		Lookback:             lookback,
		Schedule:             os.Getenv("DISCOVERY_SCHEDULE"),
		RulesPath:            os.Getenv("DISCOVERY_RULES"),
	}, nil
}
