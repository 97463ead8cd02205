package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/thejasondev/groundops/internal/api"
	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/config"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/logging"
	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/middleware"
	"github.com/thejasondev/groundops/internal/workers"
)

// RegisterRoutes builds the service graph and mounts everything on a Chi
// router.
func RegisterRoutes(cfg *config.Config, kv db.KVStore, upSince time.Time) (http.Handler, *api.Dependencies) {
	r := chi.NewRouter()

	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.ThemeMiddleware(kv))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(kv, upSince))

	signer := common.NewTokenSignerService([]byte(cfg.TokenSecret))
	deps := api.InitDependencies(kv, signer, metricsReg, cfg.AutosaveDebounce)
	handlers := api.NewHandlers(deps)

	workersContainer := workers.InitWorkers(deps.Store, deps.Engine, metricsReg)
	r.Get("/ws/status", workersContainer.Status.Handler())

	RegisterAPIRoutes(r, cfg, handlers, signer)

	return r, deps
}
