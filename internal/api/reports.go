package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thejasondev/groundops/internal/common"
)

// GetReport handles GET /api/v1/reports/{id}: the assembled operations
// report as JSON for the print view.
func (h *Handlers) GetReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.deps.Store.Get(chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		common.RespondSuccess(w, initTime, "", h.deps.Reports.BuildReport(flight))
	}
}

// ExportReport handles GET /api/v1/reports/{id}/export and streams the
// report workbook.
func (h *Handlers) ExportReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.deps.Store.Get(chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}

		buf, err := h.deps.Reports.ExportXLSX(flight)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to build report export")
			return
		}

		filename := fmt.Sprintf("operations-report-%s.xlsx", flight.FlightNumber)
		if code := common.ShortStationCode(flight.Destination); code != "" {
			filename = fmt.Sprintf("operations-report-%s-%s.xlsx", flight.FlightNumber, code)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, _ = w.Write(buf.Bytes())
	}
}
