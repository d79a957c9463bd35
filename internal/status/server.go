// Package status serves the HTTP health and status endpoints used in
// schedule mode, plus Prometheus metrics.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot is the point-in-time state reported by GET /status.
type Snapshot struct {
	Running   bool      `json:"running"`
	Preset    string    `json:"preset"`
	NextRun   time.Time `json:"next_run"`
	LastRunAt time.Time `json:"last_run_at,omitzero"`
	LastRunOK bool      `json:"last_run_ok"`
	LastError string    `json:"last_error,omitempty"`
	TotalRuns int64     `json:"total_runs"`
	TotalSent int64     `json:"total_sent"`
}

// Reporter supplies the current Snapshot. Implemented by the scheduler.
type Reporter interface {
	Snapshot() Snapshot
}

// Server is the status HTTP server.
type Server struct {
	addr     string
	reporter Reporter
	logger   *slog.Logger
	srv      *http.Server
}

// NewServer creates a status server listening on addr.
func NewServer(addr string, reporter Reporter, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{addr: addr, reporter: reporter, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", s.handleHealth())
	r.Get("/status", s.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the server until Shutdown. It blocks.
func (s *Server) Start() error {
	s.logger.Info("status: listening", "addr", s.addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleHealth reports "ok", or "degraded" once a scheduled run has failed
// and no later run has recovered. Always 200: a failed digest run is not a
// reason to restart the process.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state := "ok"
		if s.reporter != nil {
			if snap := s.reporter.Snapshot(); snap.TotalRuns > 0 && !snap.LastRunOK {
				state = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": state})
	}
}

// handleStatus reports scheduler state and the last run outcome.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var snap Snapshot
		if s.reporter != nil {
			snap = s.reporter.Snapshot()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
