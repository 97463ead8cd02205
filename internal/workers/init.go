package workers

import (
	"time"

	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/services"
)

type WorkersContainer struct {
	Status *StatusHub
}

func InitWorkers(
	store *services.FlightStoreService,
	engine *services.TurnaroundEngine,
	metricsReg *metrics.MetricsRegistry,
) *WorkersContainer {
	hub := NewStatusHub(store, engine, metricsReg, time.Now)

	return &WorkersContainer{
		Status: hub,
	}
}
