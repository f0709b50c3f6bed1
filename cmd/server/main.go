package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/aiobituaries/discovery/internal/classifier"
	"github.com/aiobituaries/discovery/internal/collector"
	"github.com/aiobituaries/discovery/internal/config"
	"github.com/aiobituaries/discovery/internal/domain"
	"github.com/aiobituaries/discovery/internal/gate"
	"github.com/aiobituaries/discovery/internal/httpserver"
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
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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
	server := httpserver.NewServer(cfg, runner, logger)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Optional in-process schedule for periodic discovery runs
	if cfg.Schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Schedule, func() {
			server.RunScheduled(ctx)
		}); err != nil {
			return fmt.Errorf("invalid DISCOVERY_SCHEDULE: %w", err)
		}
		c.Start()
		defer c.Stop()
		logger.Info("scheduled discovery enabled", "schedule", cfg.Schedule)
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}

// buildStore selects the content store: the hosted Sanity store when fully
// configured, the local SQLite store when a path is set, and an inert stub
// otherwise so the service still starts without persistence credentials.
func buildStore(cfg *config.Config, logger *slog.Logger) (domain.ContentStore, func(), error) {
	switch {
	case cfg.SanityConfigured():
		client := sanity.NewClient(sanity.Config{
			ProjectID: cfg.SanityProjectID,
			Dataset:   cfg.SanityDataset,
			Token:     cfg.SanityToken,
		})
		logger.Info("using sanity content store", "project", cfg.SanityProjectID, "dataset", cfg.SanityDataset)
		return client, func() {}, nil
	case cfg.SQLitePath != "":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite content store", "path", cfg.SQLitePath)
		return store, func() { store.Close() }, nil
	default:
		logger.Warn("no content store configured, drafts will not be persisted")
		return pipeline.UnconfiguredStore{}, func() {}, nil
	}
}
