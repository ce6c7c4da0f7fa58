// Package api serves metrics computation and the run ledger over HTTP.
package api

import (
	"net/http"
	"time"

	"creditrisk/domain/metrics"
	"creditrisk/internal/logging"
	"creditrisk/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MetricsComputer scores predictions. Implemented by evaluation.Reporter.
type MetricsComputer interface {
	Compute(yTrue, yPred []int, yProba []float64) (metrics.Bundle, error)
}

// Server holds the HTTP handlers and their dependencies
type Server struct {
	router       *chi.Mux
	metrics      MetricsComputer
	runs         ports.RunRepository
	logger       logging.Logger
	maxBodyBytes int64
}

// MaxBodyBytes caps the size of a request body
const MaxBodyBytes int64 = 8 << 20

// NewServer creates a server with its routes registered
func NewServer(computer MetricsComputer, runs ports.RunRepository, logger logging.Logger) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		metrics:      computer,
		runs:         runs,
		logger:       logging.OrNop(logger),
		maxBodyBytes: MaxBodyBytes,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/metrics", s.handleComputeMetrics)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
}

// requestLogger logs one line per request through the injected logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("%s %s %d %dB %s [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}
