package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the dashboard UI is served from its own origin in dev
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", h.TriggerSync)
		r.Get("/sync/status", h.GetSyncStatus)

		r.Route("/renewals", func(r chi.Router) {
			r.Get("/", h.GetRenewals)
			r.Get("/{id}", h.GetRenewal)
		})

		r.Post("/outreach/email", h.GenerateOutreach)
		r.Post("/outreach/send", h.SendOutreach)
	})

	return r
}
