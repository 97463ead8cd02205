package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(kv db.KVStore, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]entities.ServiceStatus)

		storageStatus := "ok"
		storageDetails := "Storage reachable"
		if err := kv.Ping(r.Context()); err != nil {
			storageStatus = "down"
			storageDetails = err.Error()
		}
		services["storage"] = entities.ServiceStatus{
			Status:  storageStatus,
			Details: storageDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
