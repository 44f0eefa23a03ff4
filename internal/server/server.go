// Package server implements the portgraph HTTP API.
//
// The API exposes stored dependency graphs and their query operations:
//
//	POST   /api/v1/graphs                 store a graph document
//	POST   /api/v1/graphs/extract         extract and store a graph for a board
//	GET    /api/v1/graphs                 list stored graphs
//	GET    /api/v1/graphs/{id}            fetch a stored graph document
//	DELETE /api/v1/graphs/{id}            delete a stored graph
//	GET    /api/v1/graphs/{id}/nodes      look up nodes by package spec
//	GET    /api/v1/graphs/{id}/deps       dependencies or reverse dependencies
//	GET    /api/v1/graphs/{id}/isdep      dependency reachability check
//	GET    /api/v1/graphs/{id}/relevant   source path relevance query
//	GET    /api/v1/graphs/{id}/render     DOT or SVG rendering
//	GET    /healthz                       liveness probe
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/portgraph/portgraph/pkg/emerge"
	"github.com/portgraph/portgraph/pkg/store"
)

// Server holds the API dependencies.
type Server struct {
	logger *log.Logger
	store  store.Store
	runner *emerge.Runner // nil disables the extract endpoint
}

// New creates a server backed by the given store. A nil runner disables
// the extract endpoint; all other endpoints work on stored graphs.
func New(logger *log.Logger, st store.Store, runner *emerge.Runner) *Server {
	return &Server{logger: logger, store: st, runner: runner}
}

// Router builds the chi router with all routes and middleware registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/graphs", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Post("/extract", s.handleExtract)
		r.Get("/", s.handleList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/nodes", s.handleNodes)
			r.Get("/deps", s.handleDeps)
			r.Get("/isdep", s.handleIsDep)
			r.Get("/relevant", s.handleRelevant)
			r.Get("/render", s.handleRender)
		})
	})

	return r
}

// ListenAndServe runs the API server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("API server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID attaches a fresh UUID to each request for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", r.Context().Value(requestIDKey),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
