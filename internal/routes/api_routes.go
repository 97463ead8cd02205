package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/thejasondev/groundops/internal/api"
	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/config"
	"github.com/thejasondev/groundops/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers. Reads are
// open; every mutation sits behind auth.
func RegisterAPIRoutes(r chi.Router, cfg *config.Config, handlers *api.Handlers, signer *common.TokenSignerService) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

		// Read-only dashboard data
		v1.Get("/flights", handlers.ListFlights())
		v1.Get("/flights/{id}", handlers.GetFlight())
		v1.Get("/flights/{id}/draft", handlers.GetDraft())
		v1.Get("/reports/{id}", handlers.GetReport())
		v1.Get("/reports/{id}/export", handlers.ExportReport())
		v1.Get("/theme", handlers.GetTheme())

		v1.Post("/auth/dashboard-link", handlers.GenerateDashboardLinkHandler())

		// Mutating routes
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(cfg.APIKey, signer))

			authed.Post("/flights", handlers.CreateFlight())
			authed.Put("/flights/{id}", handlers.UpdateFlight())
			authed.Post("/flights/{id}/activate", handlers.ActivateFlight())
			authed.Post("/flights/{id}/operations", handlers.RecordOperation())
			authed.Put("/flights/{id}/notes", handlers.UpdateNotes())
			authed.Post("/flights/{id}/complete", handlers.CompleteFlight())
			authed.Delete("/flights/{id}", handlers.DeleteFlight())
			authed.Put("/theme", handlers.SetTheme())
		})
	})
}
