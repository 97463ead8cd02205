package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/models/dtos"
)

// CreateFlight handles POST /api/v1/flights. The payload arrives already
// validated by the intake form collaborator.
func (h *Handlers) CreateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.FlightIntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid flight payload", http.StatusBadRequest)
			return
		}

		flight := h.deps.Store.Add(r.Context(), req)
		common.RespondSuccess(w, initTime, "Flight created", flight, http.StatusCreated)
	}
}

// ListFlights handles GET /api/v1/flights.
func (h *Handlers) ListFlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "", h.deps.Store.Collections())
	}
}

// GetFlight handles GET /api/v1/flights/{id}: the record plus its live
// turnaround status. A flight without a schedule simply has no status
// section.
func (h *Handlers) GetFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.deps.Store.Get(chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}

		detail := dtos.FlightDetailDto{Flight: flight}
		if flight.ETA != "" && flight.ETD != "" {
			scheduled := h.deps.Engine.ComputeScheduled(flight.ETA, flight.ETD)
			status := h.deps.Engine.ComputeStatus(
				flight.ETA, flight.ETD,
				flight.ArrivalAnchorTime(), flight.DepartureAnchorTime(),
				h.deps.Clock(),
			)
			detail.Scheduled = &scheduled
			detail.Turnaround = &status
			if h.deps.Metrics != nil {
				h.deps.Metrics.StatusRecomputesTotal.Inc()
			}
		}
		common.RespondSuccess(w, initTime, "", detail)
	}
}

// UpdateFlight handles PUT /api/v1/flights/{id}: edits the intake details of
// an existing record without touching its status or recorded operations.
func (h *Handlers) UpdateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.FlightIntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid flight payload", http.StatusBadRequest)
			return
		}

		flight, err := h.deps.Store.Get(chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		flight.FlightNumber = req.FlightNumber
		flight.Airline = req.Airline
		flight.Destination = req.Destination
		flight.ETA = req.ETA
		flight.ETD = req.ETD

		if err := h.deps.Store.Update(r.Context(), flight); err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		common.RespondSuccess(w, initTime, "Flight updated", flight)
	}
}

// ActivateFlight handles POST /api/v1/flights/{id}/activate. Switching away
// from another in-progress flight requires confirm_switch in the body.
func (h *Handlers) ActivateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ActivateRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		flight, err := h.deps.Store.Activate(r.Context(), chi.URLParam(r, "id"), req.ConfirmSwitch)
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}

		recovery := h.deps.Drafts.Open(r.Context(), flight)
		data := map[string]any{
			"flight":   flight,
			"recovery": recovery,
		}
		common.RespondSuccess(w, initTime, "Flight activated", data)
	}
}

// RecordOperation handles POST /api/v1/flights/{id}/operations and schedules
// the debounced draft save.
func (h *Handlers) RecordOperation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.OperationEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid operation payload", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "id")
		flight, err := h.deps.Store.RecordOperation(r.Context(), id, req.Task, req.Field, req.Time)
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}

		h.deps.Drafts.Queue(r.Context(), id, flight.Operations, flight.Notes)

		data := map[string]any{
			"flight":      flight,
			"save_status": string(h.deps.Drafts.Status()),
		}
		common.RespondSuccess(w, initTime, "Operation recorded", data)
	}
}

// UpdateNotes handles PUT /api/v1/flights/{id}/notes.
func (h *Handlers) UpdateNotes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.NotesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid notes payload", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "id")
		flight, err := h.deps.Store.SetNotes(r.Context(), id, req.Notes)
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}

		h.deps.Drafts.Queue(r.Context(), id, flight.Operations, flight.Notes)

		data := map[string]any{
			"flight":      flight,
			"save_status": string(h.deps.Drafts.Status()),
		}
		common.RespondSuccess(w, initTime, "Notes updated", data)
	}
}

// GetDraft handles GET /api/v1/flights/{id}/draft: the resolved starting
// state for the operations view.
func (h *Handlers) GetDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.deps.Store.Get(chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		common.RespondSuccess(w, initTime, "", h.deps.Drafts.Open(r.Context(), flight))
	}
}

// CompleteFlight handles POST /api/v1/flights/{id}/complete.
func (h *Handlers) CompleteFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.deps.Store.Complete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		common.RespondSuccess(w, initTime, "Flight completed", flight)
	}
}

// DeleteFlight handles DELETE /api/v1/flights/{id}?collection=pending|completed.
func (h *Handlers) DeleteFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		collection := r.URL.Query().Get("collection")
		if collection == "" {
			collection = "pending"
		}

		if err := h.deps.Store.Delete(r.Context(), chi.URLParam(r, "id"), collection); err != nil {
			common.RespondError(w, initTime, err, "", httpStatusFor(err))
			return
		}
		common.RespondSuccess(w, initTime, "Flight deleted", nil)
	}
}
