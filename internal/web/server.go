// Package web exposes the measurement service as a JSON API. It is a thin
// boundary: request decoding, error-to-status mapping, and nothing else.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"windowlog/internal/service"
)

type Server struct {
	service *service.MeasurementService
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(svc *service.MeasurementService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /measurements", s.handleCreateMeasurement)
	s.mux.HandleFunc("GET /measurements", s.handleListMeasurements)
	s.mux.HandleFunc("GET /measurements/{id}", s.handleGetMeasurement)
	s.mux.HandleFunc("PATCH /measurements/{id}", s.handleUpdateMeasurement)
	s.mux.HandleFunc("DELETE /measurements/{id}", s.handleDeleteMeasurement)

	s.mux.HandleFunc("POST /measurements/{id}/photos", s.handleAttachPhotos)
	s.mux.HandleFunc("GET /photos/{id}", s.handleGetPhoto)
	s.mux.HandleFunc("GET /photos/{id}/thumbnail", s.handleGetPhotoThumbnail)
	s.mux.HandleFunc("DELETE /photos/{id}", s.handleDeletePhoto)

	s.mux.HandleFunc("GET /search", s.handleSearch)

	s.mux.HandleFunc("GET /measurements/{id}/export", s.handleExportMeasurement)
	s.mux.HandleFunc("POST /exports", s.handleExportToFile)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s)
}
