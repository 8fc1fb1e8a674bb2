// Package api exposes the library, analysis and export over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/stratfolio/pkg/logger"
)

// NewRouter wires every route of h.
func NewRouter(h *Handler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/strategies", h.ListStrategies).Methods("GET")
	api.HandleFunc("/strategies/archive", h.ArchiveStrategies).Methods("POST")
	api.HandleFunc("/strategies/{id}", h.GetStrategy).Methods("GET")
	api.HandleFunc("/uploads", h.ListUploads).Methods("GET")
	api.HandleFunc("/uploads", h.Upload).Methods("POST")
	api.HandleFunc("/uploads/{name}", h.RemoveUpload).Methods("DELETE")

	api.HandleFunc("/selection", h.GetSelection).Methods("GET")
	api.HandleFunc("/selection", h.SetSelection).Methods("PUT")

	api.HandleFunc("/analysis", h.Analyze).Methods("POST")

	api.HandleFunc("/portfolios", h.ListPortfolios).Methods("GET")
	api.HandleFunc("/portfolios", h.CreatePortfolio).Methods("POST")
	api.HandleFunc("/portfolios/{id}", h.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolios/{id}", h.RenamePortfolio).Methods("PATCH")
	api.HandleFunc("/portfolios/{id}", h.DeletePortfolio).Methods("DELETE")
	api.HandleFunc("/portfolios/{id}/archive", h.ArchivePortfolio).Methods("GET")
	api.HandleFunc("/portfolios/{id}/summary", h.PortfolioSummary).Methods("GET")
	api.HandleFunc("/portfolios/{id}/curve", h.PortfolioCurve).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "stratfolio",
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("panic recovered")

					respondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
