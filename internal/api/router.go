package api

import (
	"net/http"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/database"
	"github.com/factchecker/veracity/internal/verify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
)

// NewRouter creates a new HTTP router with all routes configured. store may be
// nil to run without the audit log.
func NewRouter(cfg *config.Config, engine *verify.Engine, store database.Store, version string) http.Handler {
	r := chi.NewRouter()

	reports := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	handler := NewHandler(engine, store, reports, version)

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			if store != nil {
				r.Use(AuditMiddleware(store))
			}
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			r.Post("/analyze", handler.Analyze)
			r.Get("/analyze/stream", handler.AnalyzeStream)
			r.Get("/topics", handler.Topics)
			r.Get("/audit", handler.GetAuditLogs)
		})
	})

	return r
}
