package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/models/entities"
)

func testRouter(t *testing.T) (*chi.Mux, *Dependencies) {
	t.Helper()

	deps := InitDependencies(db.NewMemoryKV(), nil, nil, time.Millisecond)
	deps.Clock = func() time.Time {
		return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	}
	h := NewHandlers(deps)

	r := chi.NewRouter()
	r.Post("/flights", h.CreateFlight())
	r.Get("/flights", h.ListFlights())
	r.Get("/flights/{id}", h.GetFlight())
	r.Put("/flights/{id}", h.UpdateFlight())
	r.Post("/flights/{id}/activate", h.ActivateFlight())
	r.Post("/flights/{id}/operations", h.RecordOperation())
	r.Post("/flights/{id}/complete", h.CompleteFlight())
	r.Delete("/flights/{id}", h.DeleteFlight())
	r.Get("/reports/{id}", h.GetReport())
	return r, deps
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, dtos.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope dtos.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid envelope: %v: %s", err, rec.Body.String())
	}
	return rec, envelope
}

func decodeData(t *testing.T, envelope dtos.APIResponse, out any) {
	t.Helper()
	blob, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		t.Fatal(err)
	}
}

func createTestFlight(t *testing.T, r http.Handler) entities.Flight {
	t.Helper()
	rec, envelope := doJSON(t, r, http.MethodPost, "/flights", dtos.FlightIntakeRequest{
		FlightNumber: "CU-152",
		Airline:      "Cubana",
		Destination:  "Havana (HAV)",
		ETA:          "10:00",
		ETD:          "11:30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var f entities.Flight
	decodeData(t, envelope, &f)
	return f
}

func TestCreateFlightRejectsBadJSON(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/flights", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetFlightIncludesTurnaroundStatus(t *testing.T) {
	r, _ := testRouter(t)
	f := createTestFlight(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/activate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate status = %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/operations", dtos.OperationEventRequest{
		Task: constants.TaskRealArrival, Field: "start", Time: "10:02",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("operation status = %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/operations", dtos.OperationEventRequest{
		Task: constants.TaskRealArrival, Field: "end", Time: "10:06",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("operation status = %d", rec.Code)
	}

	rec, envelope := doJSON(t, r, http.MethodGet, "/flights/"+f.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var detail dtos.FlightDetailDto
	decodeData(t, envelope, &detail)
	if detail.Scheduled == nil || detail.Scheduled.Minutes != 90 {
		t.Errorf("scheduled = %+v, want 90 minutes", detail.Scheduled)
	}
	if detail.Turnaround == nil {
		t.Fatal("expected a turnaround status for a scheduled flight")
	}
	// clock is 10:30, arrival ended 10:06: 24 of 90 minutes used
	if detail.Turnaround.Phase != constants.PhaseActive {
		t.Errorf("phase = %s, want active", detail.Turnaround.Phase)
	}
	if detail.Turnaround.RemainingMinutes != 66 {
		t.Errorf("remaining = %d, want 66", detail.Turnaround.RemainingMinutes)
	}
}

func TestUpdateFlightEditsDetails(t *testing.T) {
	r, _ := testRouter(t)
	f := createTestFlight(t, r)

	rec, envelope := doJSON(t, r, http.MethodPut, "/flights/"+f.ID, dtos.FlightIntakeRequest{
		FlightNumber: "CU-152",
		Airline:      "Cubana",
		Destination:  "Varadero (VRA)",
		ETA:          "10:00",
		ETD:          "12:00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated entities.Flight
	decodeData(t, envelope, &updated)
	if updated.ETD != "12:00" || updated.Destination != "Varadero (VRA)" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestActivateSwitchConflict(t *testing.T) {
	r, _ := testRouter(t)
	first := createTestFlight(t, r)
	second := createTestFlight(t, r)

	if rec, _ := doJSON(t, r, http.MethodPost, "/flights/"+first.ID+"/activate", nil); rec.Code != http.StatusOK {
		t.Fatalf("first activate = %d", rec.Code)
	}

	rec, envelope := doJSON(t, r, http.MethodPost, "/flights/"+second.ID+"/activate", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed switch status = %d, want 409", rec.Code)
	}
	if envelope.Status != string(constants.APIStatusError) {
		t.Errorf("envelope status = %q", envelope.Status)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/flights/"+second.ID+"/activate", dtos.ActivateRequest{ConfirmSwitch: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed switch status = %d", rec.Code)
	}
}

func TestOperationOnInactiveFlightConflicts(t *testing.T) {
	r, _ := testRouter(t)
	f := createTestFlight(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/operations", dtos.OperationEventRequest{
		Task: constants.TaskBoarding, Field: "start", Time: "10:15",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for an inactive flight", rec.Code)
	}
}

func TestCompleteAndDeleteFlow(t *testing.T) {
	r, deps := testRouter(t)
	f := createTestFlight(t, r)

	if rec, _ := doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/activate", nil); rec.Code != http.StatusOK {
		t.Fatal("activate failed")
	}
	rec, envelope := doJSON(t, r, http.MethodPost, "/flights/"+f.ID+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d", rec.Code)
	}
	var done entities.Flight
	decodeData(t, envelope, &done)
	if done.Status != constants.FlightStatusCompleted {
		t.Errorf("status = %s", done.Status)
	}
	if deps.Store.ActiveID() != "" {
		t.Error("completion should clear the active flight")
	}

	// the record moved to completed, so a pending delete misses
	rec, _ = doJSON(t, r, http.MethodDelete, "/flights/"+f.ID+"?collection=pending", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("pending delete status = %d, want 404", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodDelete, "/flights/"+f.ID+"?collection=completed", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("completed delete status = %d", rec.Code)
	}
}

func TestGetReportForUnknownFlight(t *testing.T) {
	r, _ := testRouter(t)
	rec, _ := doJSON(t, r, http.MethodGet, "/reports/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
