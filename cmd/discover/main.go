// Command discover runs the discovery pipeline once and prints the run
// report as JSON. It reads the same environment configuration as the server;
// set DISCOVERY_ALLOW_INSECURE=true to run without a trigger secret, which
// the one-shot binary never checks anyway.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aiobituaries/discovery/internal/classifier"
	"github.com/aiobituaries/discovery/internal/collector"
	"github.com/aiobituaries/discovery/internal/config"
	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/gate"
	"github.com/aiobituaries/discovery/internal/pipeline"
	"github.com/aiobituaries/discovery/internal/sanity"
	"github.com/aiobituaries/discovery/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lookback := flag.Duration("lookback", 0, "how far back to search (default: DISCOVERY_LOOKBACK or 24h)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *lookback > 0 {
		cfg.Lookback = *lookback
	}

	rules := gate.DefaultRules()
	if cfg.RulesPath != "" {
		rules, err = gate.LoadRules(cfg.RulesPath)
		if err != nil {
			return fmt.Errorf("load gate rules: %w", err)
		}
	}

	qualityGate, err := gate.New(rules)
	if err != nil {
		return fmt.Errorf("create quality gate: %w", err)
	}

	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create content store: %w", err)
	}
	defer closeStore()

	col := collector.New(logger,
		collector.NewXSource("", cfg.XBearerToken),
		collector.NewNewsSource("", cfg.NewsAPIKey, append(rules.Tier1Publications, rules.Tier2Publications...)),
	)
	cls := classifier.NewAnthropic(classifier.Config{
		APIKey: cfg.AnthropicAPIKey,
		Model:  cfg.AnthropicModel,
	}, logger)

	runner := pipeline.New(col, qualityGate, cls, store, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := runner.Run(ctx, time.Now().UTC().Add(-cfg.Lookback))
	if err != nil {
		return fmt.Errorf("discovery run: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func buildStore(cfg *config.Config, logger *slog.Logger) (domain.ContentStore, func(), error) {
	switch {
	case cfg.SanityConfigured():
		client := sanity.NewClient(sanity.Config{
			ProjectID: cfg.SanityProjectID,
			Dataset:   cfg.SanityDataset,
			Token:     cfg.SanityToken,
		})
		return client, func() {}, nil
	case cfg.SQLitePath != "":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		logger.Warn("no content store configured, drafts will not be persisted")
		return pipeline.UnconfiguredStore{}, func() {}, nil
	}
}
