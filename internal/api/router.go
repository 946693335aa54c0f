package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/vidtoot/internal/api/handler"
	mw "github.com/iconidentify/vidtoot/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured. Health
// endpoints stay unauthenticated so probes work without credentials; the
// dashboard and job API sit behind basic auth when it is configured.
func NewRouter(
	jobHandler *handler.JobHandler,
	healthHandler *handler.HealthHandler,
	uiHandler *handler.UIHandler,
	username, password string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //api/jobs -> /api/jobs)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	// Health endpoints (no auth)
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthHandler.Live)
		r.Get("/ready", healthHandler.Ready)
		r.Get("/stats", healthHandler.Stats)
	})

	// Dashboard and job API (authenticated when credentials are set)
	r.Group(func(r chi.Router) {
		r.Use(mw.BasicAuth(username, password))

		r.Get("/", uiHandler.Index)

		r.Route("/api", func(r chi.Router) {
			r.Post("/process", jobHandler.Process)
			r.Get("/jobs", jobHandler.List)
			r.Get("/jobs/{jobID}", jobHandler.Get)
		})
	})

	return r
}
