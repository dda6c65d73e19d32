// Package api serves splitter plans over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/plans                  {"demand": [54, 18, 24]}
//	GET  /v1/plans?limit=n
//	GET  /v1/plans/{id}
//	GET  /v1/plans/{id}/diagram?format=svg&detailed=true&direction=LR
//
// Errors are returned as {"code": "...", "message": "..."} with a status
// derived from the error code.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/splitplan/pkg/pipeline"
	"github.com/matzehuels/splitplan/pkg/store"
)

// Defaults.
const (
	DefaultMaxOutputs = 64
	maxBodyBytes      = 1 << 20
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner     *pipeline.Runner
	store      store.PlanStore
	logger     *log.Logger
	maxOutputs int
	now        func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxOutputs caps the number of outputs accepted per plan.
func WithMaxOutputs(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxOutputs = n
		}
	}
}

// New creates a server. A nil runner gets an uncached one; a nil store gets
// an in-memory store.
func New(runner *pipeline.Runner, st store.PlanStore, opts ...Option) *Server {
	s := &Server{
		runner:     runner,
		store:      st,
		logger:     log.Default(),
		maxOutputs: DefaultMaxOutputs,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(hooks)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/plans", func(r chi.Router) {
		r.Post("/", s.handleCreatePlan)
		r.Get("/", s.handleListPlans)
		r.Get("/{id}", s.handleGetPlan)
		r.Get("/{id}/diagram", s.handleGetDiagram)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFoundRoute(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})
	return r
}

// ServeOptions configures [Server.ListenAndServe].
type ServeOptions struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Ready, if set, receives the bound address once listening.
	Ready func(addr net.Addr)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, opts ServeOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	s.logger.Info("listening", "addr", ln.Addr().String())
	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}
