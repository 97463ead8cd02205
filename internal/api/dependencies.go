package api

import (
	"time"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/services"
)

// Dependencies wires the handler layer to the services it calls.
type Dependencies struct {
	Store   *services.FlightStoreService
	Drafts  *services.DraftAutosaveService
	Engine  *services.TurnaroundEngine
	Reports *services.ReportService
	KV      db.KVStore
	Signer  *common.TokenSignerService
	Metrics *metrics.MetricsRegistry

	// Clock supplies "now" for turnaround computations; production wiring
	// passes the wall clock, tests inject fixed instants.
	Clock func() time.Time
}

// InitDependencies builds the service graph on top of a KV backend.
func InitDependencies(kv db.KVStore, signer *common.TokenSignerService, metricsReg *metrics.MetricsRegistry, autosaveDebounce time.Duration) *Dependencies {
	engine := services.NewTurnaroundEngine()
	cache := common.NewCacheService(services.DraftTTL, time.Hour)
	drafts := services.NewDraftAutosaveService(kv, cache, metricsReg, autosaveDebounce)
	store := services.NewFlightStoreService(kv, metricsReg)
	store.SetDraftDiscarder(drafts)

	return &Dependencies{
		Store:   store,
		Drafts:  drafts,
		Engine:  engine,
		Reports: services.NewReportService(engine),
		KV:      kv,
		Signer:  signer,
		Metrics: metricsReg,
		Clock:   time.Now,
	}
}
