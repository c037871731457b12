// Package api implements the motifmerge HTTP service used by serve
// mode. It exposes the merge engine over JSON: clients post motif
// sets with merge options and receive the merged set back.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server wires the merge engine behind a chi router.
type Server struct {
	logger *log.Logger
	router chi.Router
}

// New creates a server with request-ID and logging middleware
// installed and all routes registered.
func New(logger *log.Logger) *Server {
	s := &Server{logger: logger, router: chi.NewRouter()}

	s.router.Use(s.requestID)
	s.router.Use(s.logRequests)

	s.router.Get("/api/healthz", s.handleHealthz)
	s.router.Post("/api/merge", s.handleMerge)
	s.router.Post("/api/distances", s.handleDistances)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// requestIDHeader carries the per-request UUID in responses so
// clients can reference it in bug reports.
const requestIDHeader = "X-Request-ID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", w.Header().Get(requestIDHeader),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
