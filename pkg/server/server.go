// Package server exposes the linearization runner over HTTP.
//
// # Routes
//
//	GET  /healthz        liveness check with build version
//	POST /v1/linearize   {"hierarchy": {...}, "root": "D"} -> {"root", "order", "cached"}
//	POST /v1/check       {"hierarchy": {...}, "workers": 8} -> report
//
// Hierarchies use the same document format as the CLI's JSON files:
//
//	{"nodes": [{"id": "A"}, {"id": "B", "parents": ["A"]}]}
//
// # Errors
//
// Failures are returned as {"code", "message", "details"} with codes from
// [github.com/moose/Algorithm-C3/pkg/errors]. Malformed requests get 400;
// hierarchies that cannot be linearized get 422, with details naming the
// unresolvable node, the cycle path, or the partial merge and blocked head.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moose/Algorithm-C3/pkg/pipeline"
)

// Defaults for the HTTP server.
const (
	DefaultAddr = ":8080"

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 8 << 20

	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves linearization requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server over runner. A nil logger falls back to the runner's.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/linearize", s.handleLinearize)
		r.Post("/check", s.handleCheck)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, errNotFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}
