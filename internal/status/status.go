// Package status serves the agent's local diagnostics endpoints.
//
// The console UI and operators poll these to render the connectivity
// indicator and to inspect the realtime session without attaching a
// debugger. The server binds to loopback by default and exposes no
// mutating operations.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tridigitals/ispmanagement-realtime/internal/connection"
	"github.com/tridigitals/ispmanagement-realtime/internal/router"
	"github.com/tridigitals/ispmanagement-realtime/internal/store"
)

// Config configures the status server.
type Config struct {
	Addr           string   // listen address, loopback unless exposed deliberately
	AllowedOrigins []string // browser origins allowed to poll, empty disables CORS
	InstanceID     string   // agent instance identifier reported in payloads
}

// ConnectionSource yields the realtime session snapshot.
type ConnectionSource interface {
	Snapshot() connection.Snapshot
}

// EventSource yields the event router counters.
type EventSource interface {
	Stats() router.RouterStats
}

// Deps are the components the server reports on.
type Deps struct {
	Connection    ConnectionSource
	Events        EventSource
	Session       *store.SessionStore
	Notifications *store.NotificationStore
	Nav           *store.NavStore
	Tickets       *store.TicketFeed
}

// Server is the diagnostics HTTP server.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	ln      net.Listener
	srv     *http.Server
	started time.Time
}

// NewServer creates a status server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "status"),
	}
}

// Start binds the listen address and begins serving. Bind failures are
// returned synchronously; later serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.ln = ln
	s.started = time.Now()
	s.srv = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server error", "error", err)
		}
	}()

	s.logger.Info("status server listening", "addr", ln.Addr().String())
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("status server stopping")
	return s.srv.Shutdown(ctx)
}

// Addr returns the bound listen address, useful when Addr was ":0".
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	return r
}
