package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// ErrMissingOrchestrator is returned when the orchestrator is not provided.
var ErrMissingOrchestrator = errors.New("httpapi: orchestrator is required")

// Runner runs a scheduled task immediately and records its result.
type Runner interface {
	RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error)
}

// Ports aggregates the driving ports used by the HTTP API.
type Ports struct {
	Orchestrator driving.Orchestrator

	// Catalogue backs GET /v1/connectors. Optional.
	Catalogue driving.ConnectorCatalogue

	// History backs GET /v1/refresh/history. Optional.
	History driving.RefreshHistory

	// Runner records full refreshes as scheduler runs. When nil a full
	// refresh calls the orchestrator directly.
	Runner Runner
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	Addr              string
	MaxBodyBytes      int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8787"

// Server is the HTTP API.
type Server struct {
	ports   Ports
	cfg     ServerConfig
	handler http.Handler
	now     func() time.Time
}

// NewServer builds the API handler.
func NewServer(ports Ports, cfg ServerConfig) (*Server, error) {
	if ports.Orchestrator == nil {
		return nil, ErrMissingOrchestrator
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{ports: ports, cfg: cfg, now: time.Now}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/messages", s.handleMessages)
	mux.HandleFunc("GET /v1/emails", s.handleEmails)
	mux.HandleFunc("GET /v1/notes", s.handleNotes)
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/actions", s.handleActions)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/connectors", s.handleConnectors)
	mux.HandleFunc("GET /v1/refresh/history", s.handleHistory)

	mux.HandleFunc("POST /v1/messages", s.handleSendMessage)
	mux.HandleFunc("POST /v1/emails", s.handleSendEmail)
	mux.HandleFunc("POST /v1/notes", s.handleCreateNote)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)

	if s.cfg.MCP != nil {
		mux.Handle("/mcp", s.cfg.MCP)
	}

	return withRequestID(withMetrics(mux))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
