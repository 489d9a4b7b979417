// Package server exposes the generation pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                  build info
//	GET    /v1/technologies          registered technologies
//	GET    /v1/technologies/{name}   layer and via tables
//	POST   /v1/route                 run a plan (body: pipeline.Options)
//	GET    /v1/layouts               archived layouts, newest first
//	GET    /v1/layouts/{id}          an archived layout; ?format= renders it
//	DELETE /v1/layouts/{id}
//
// Errors are JSON objects {"error": {"code", "message"}} with a status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/storage"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	// Runner executes plans. Its registry serves the technology routes.
	Runner *pipeline.Runner

	// Store holds archived layouts. When nil, the runner's store is used;
	// when both are nil the layout routes answer 404.
	Store storage.Store

	Logger  *log.Logger
	Timeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   storage.Store
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = cfg.Runner.Store
	} else if cfg.Runner.Store == nil {
		cfg.Runner.Store = cfg.Store
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runner.Logger
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Server{
		runner:  cfg.Runner,
		store:   cfg.Store,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed"))
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/technologies", s.handleListTechnologies)
		r.Get("/technologies/{name}", s.handleGetTechnology)
		r.With(middleware.RequestSize(pipeline.MaxPlanSize*2)).Post("/route", s.handleRoute)
		r.Get("/layouts", s.handleListLayouts)
		r.Get("/layouts/{id}", s.handleGetLayout)
		r.Delete("/layouts/{id}", s.handleDeleteLayout)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
