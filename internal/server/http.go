// Package server exposes health, metrics, the Telegram webhook and the theme archive over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/knoguchi/themefather/internal/auth"
	"github.com/knoguchi/themefather/internal/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// HTTPServer wraps an HTTP server with a chi router
type HTTPServer struct {
	server *http.Server
	router *chi.Mux
	logger *slog.Logger
}

// HTTPServerConfig holds configuration for the HTTP server
type HTTPServerConfig struct {
	Port   int
	Logger *slog.Logger

	// Webhook receives Telegram updates when set.
	Webhook       http.Handler
	WebhookSecret string

	// Archive enables the admin theme listing when set together with AdminAPIKey.
	Archive     repository.ThemeRepository
	AdminAPIKey string

	Readiness map[string]ReadinessCheck
}

// WebhookPath is where Telegram posts updates.
const WebhookPath = "/telegram/webhook"

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(cfg HTTPServerConfig) (*HTTPServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create chi router
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLoggingMiddleware(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", healthCheckHandler())
	router.Get("/readyz", readinessCheckHandler(cfg.Readiness))
	router.Handle("/metrics", promhttp.Handler())

	if cfg.Webhook != nil {
		router.With(auth.WebhookSecret(cfg.WebhookSecret)).Post(WebhookPath, cfg.Webhook.ServeHTTP)
	}

	if cfg.Archive != nil {
		router.Route("/v1", func(r chi.Router) {
			r.Use(auth.AdminAPIKey(cfg.AdminAPIKey))
			r.Get("/users/{userID}/themes", listThemesHandler(cfg.Archive, logger))
		})
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &HTTPServer{
		server: server,
		router: router,
		logger: logger,
	}, nil
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// requestLoggingMiddleware logs HTTP requests
func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// healthCheckHandler returns a handler for the /healthz endpoint
func healthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	}
}

// readinessCheckHandler runs every check and reports 503 if any fails
func readinessCheckHandler(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"checks": failed,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
		})
	}
}

type themeResponse struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	Description string    `json:"description"`
	Theme       string    `json:"theme"`
	Partial     bool      `json:"partial"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// listThemesHandler returns a user's archived themes
func listThemesHandler(archive repository.ThemeRepository, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}

		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 100 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
				return
			}
			limit = n
		}

		records, err := archive.ListByUser(r.Context(), userID, limit)
		if err != nil {
			logger.Error("failed to list themes", "user_id", userID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list themes"})
			return
		}

		themes := make([]themeResponse, 0, len(records))
		for _, rec := range records {
			themes = append(themes, themeResponse{
				ID:          rec.ID.String(),
				Platform:    rec.Platform,
				Description: rec.Description,
				Theme:       rec.Theme,
				Partial:     rec.Partial,
				DurationMS:  rec.DurationMS,
				CreatedAt:   rec.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
