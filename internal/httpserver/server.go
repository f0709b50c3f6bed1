package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aiobituaries/discovery/internal/config"
	"github.com/aiobituaries/discovery/internal/domain"
)

// DiscoveryRunner executes one discovery pipeline run.
type DiscoveryRunner interface {
	Run(ctx context.Context, since time.Time) (*domain.RunResult, error)
}

// Server is the HTTP server exposing the discovery trigger and status
// endpoints.
type Server struct {
	cfg        *config.Config
	runner     DiscoveryRunner
	logger     *slog.Logger
	httpServer *http.Server

	// runMu serializes trigger requests so only one run is in flight.
	runMu sync.Mutex
}

// NewServer creates a new HTTP server around the given pipeline runner.
func NewServer(cfg *config.Config, runner DiscoveryRunner, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/discover", s.handleDiscover)
	mux.HandleFunc("GET /api/discover/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full run can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's HTTP handler. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDiscover authenticates the trigger and executes one pipeline run.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.logger.Warn("unauthorized discovery trigger", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	if !s.runMu.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "A discovery run is already in progress"})
		return
	}
	defer s.runMu.Unlock()

	since := time.Now().UTC().Add(-s.cfg.Lookback)
	result, err := s.runner.Run(r.Context(), since)
	if err != nil {
		s.logger.Error("discovery run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Discovery pipeline failed",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RunScheduled executes a pipeline run on behalf of the cron scheduler,
// sharing the single-flight lock with the HTTP trigger.
func (s *Server) RunScheduled(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Warn("skipping scheduled run, another run is in progress")
		return
	}
	defer s.runMu.Unlock()

	since := time.Now().UTC().Add(-s.cfg.Lookback)
	if _, err := s.runner.Run(ctx, since); err != nil {
		s.logger.Error("scheduled discovery run failed", "error", err)
	}
}

// handleStatus reports which upstream capabilities have credentials without
// running any pipeline stage.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"configured": map[string]bool{
			"search":         s.cfg.SearchConfigured(),
			"classification": s.cfg.ClassificationConfigured(),
			"persistence":    s.cfg.PersistenceConfigured(),
		},
	})
}

// authorized checks the bearer secret. When no secret is configured the
// check is skipped only if the config explicitly allows insecure triggers.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.TriggerSecret == "" {
		return s.cfg.AllowInsecureTrigger
	}

	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.TriggerSecret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
