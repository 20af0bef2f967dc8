// Package handlers serves the web UI and the JSON API.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pep299/news-summarizer/internal/config"
	"github.com/pep299/news-summarizer/internal/metrics"
	"github.com/pep299/news-summarizer/internal/service"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// Server holds the HTTP handlers and their dependencies
type Server struct {
	config  *config.Config
	service *service.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer creates the handler set. m may be nil, in which case /metrics
// is not routed.
func NewServer(cfg *config.Config, svc *service.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:  cfg,
		service: svc,
		metrics: m,
		logger:  logger.With("component", "http"),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	// Web UI
	r.HandleFunc("/", s.indexHandler).Methods("GET")
	r.HandleFunc("/report", s.reportPageHandler).Methods("GET")
	r.HandleFunc("/report.pdf", s.reportPDFHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)

	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	api.HandleFunc("/reports", s.createReportHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/reports/pdf", s.reportPDFHandler).Methods("GET")

	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("DELETE", "OPTIONS")

	api.HandleFunc("/config", s.configHandler).Methods("GET")

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, Response{
		Status: "ok",
		Data: map[string]any{
			"timestamp": time.Now().Unix(),
			"version":   Version,
		},
	})
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
