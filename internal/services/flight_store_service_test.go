package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/models/entities"
)

func newTestStore() (*FlightStoreService, *db.MemoryKV) {
	kv := db.NewMemoryKV()
	return NewFlightStoreService(kv, nil), kv
}

func intake(number string) dtos.FlightIntakeRequest {
	return dtos.FlightIntakeRequest{
		FlightNumber: number,
		Airline:      "Cubana",
		Destination:  "Havana (HAV)",
		ETA:          "10:00",
		ETD:          "11:00",
	}
}

func TestAddCreatesPendingFlight(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))
	if f.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if f.Status != constants.FlightStatusPending {
		t.Errorf("status = %s, want pending", f.Status)
	}
	if len(f.Operations) != len(constants.AllTasks()) {
		t.Errorf("operations map covers %d tasks, want %d", len(f.Operations), len(constants.AllTasks()))
	}

	second := store.Add(ctx, intake("CU-153"))
	cols := store.Collections()
	if len(cols.Pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(cols.Pending))
	}
	if cols.Pending[0].ID != second.ID {
		t.Error("newest flight should be at the head of pending")
	}
}

func TestActivateRequiresSwitchConfirmation(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	first := store.Add(ctx, intake("CU-152"))
	second := store.Add(ctx, intake("CU-153"))

	if _, err := store.Activate(ctx, first.ID, false); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	// record an operation so we can verify it survives the demotion
	if _, err := store.RecordOperation(ctx, first.ID, constants.TaskBoarding, "start", "10:15"); err != nil {
		t.Fatalf("record operation failed: %v", err)
	}

	_, err := store.Activate(ctx, second.ID, false)
	if !errors.Is(err, ErrSwitchConfirmationRequired) {
		t.Fatalf("expected switch confirmation error, got %v", err)
	}
	if store.ActiveID() != first.ID {
		t.Error("unconfirmed switch must not change the active flight")
	}

	if _, err := store.Activate(ctx, second.ID, true); err != nil {
		t.Fatalf("confirmed switch failed: %v", err)
	}
	if store.ActiveID() != second.ID {
		t.Error("confirmed switch should activate the target")
	}

	demoted, err := store.Get(first.ID)
	if err != nil {
		t.Fatalf("get demoted flight: %v", err)
	}
	if demoted.Status != constants.FlightStatusPending {
		t.Errorf("demoted status = %s, want pending", demoted.Status)
	}
	if demoted.Operations[constants.TaskBoarding].Start != "10:15" {
		t.Error("demoted flight must keep its recorded operations")
	}
}

func TestRecordOperationRules(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))

	// not active yet
	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskBoarding, "start", "10:15"); !errors.Is(err, ErrFlightNotActive) {
		t.Fatalf("expected not-active error, got %v", err)
	}

	if _, err := store.Activate(ctx, f.ID, false); err != nil {
		t.Fatal(err)
	}

	// end before start is rejected for duration tasks
	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskBoarding, "end", "10:30"); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected end-before-start error, got %v", err)
	}

	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskBoarding, "start", "10:15"); err != nil {
		t.Fatal(err)
	}
	updated, err := store.RecordOperation(ctx, f.ID, constants.TaskBoarding, "end", "10:30")
	if err != nil {
		t.Fatal(err)
	}
	if op := updated.Operations[constants.TaskBoarding]; op.Start != "10:15" || op.End != "10:30" {
		t.Errorf("boarding = %+v", op)
	}

	// instantaneous tasks write both timestamps in one action
	updated, err = store.RecordOperation(ctx, f.ID, constants.TaskDoorsClosed, "start", "10:45")
	if err != nil {
		t.Fatal(err)
	}
	if op := updated.Operations[constants.TaskDoorsClosed]; op.Start != "10:45" || op.End != "10:45" {
		t.Errorf("doors closed = %+v, want identical start/end", op)
	}

	// unknown tasks are rejected
	if _, err := store.RecordOperation(ctx, f.ID, "Waxing", "start", "10:50"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected unknown task error, got %v", err)
	}
}

func TestCompleteRequiresActiveFlight(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))
	if _, err := store.Complete(ctx, f.ID); !errors.Is(err, ErrFlightNotActive) {
		t.Fatalf("completing a never-activated flight: got %v, want not-active", err)
	}

	// demoted flights need re-activation before completing too
	other := store.Add(ctx, intake("CU-153"))
	if _, err := store.Activate(ctx, f.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Activate(ctx, other.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Complete(ctx, f.ID); !errors.Is(err, ErrFlightNotActive) {
		t.Fatalf("completing a demoted flight: got %v, want not-active", err)
	}
}

func TestCompleteDerivesActualsAndCapsList(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))
	if _, err := store.Activate(ctx, f.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskRealArrival, "start", "10:05"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskRealArrival, "end", "10:10"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordOperation(ctx, f.ID, constants.TaskPushback, "start", "11:08"); err != nil {
		t.Fatal(err)
	}

	done, err := store.Complete(ctx, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	// finalization reads the start field of both anchor tasks
	if done.ATA != "10:05" {
		t.Errorf("ata = %q, want start of arrival task", done.ATA)
	}
	if done.ATD != "11:08" {
		t.Errorf("atd = %q, want start of push-back task", done.ATD)
	}
	if done.Status != constants.FlightStatusCompleted {
		t.Errorf("status = %s", done.Status)
	}
	if store.ActiveID() != "" {
		t.Error("completion must clear the active designation")
	}

	cols := store.Collections()
	if len(cols.Pending) != 0 {
		t.Errorf("pending = %d, want 0", len(cols.Pending))
	}

	// completing again is rejected
	if _, err := store.Complete(ctx, f.ID); !errors.Is(err, ErrFlightCompleted) {
		t.Fatalf("expected completed error, got %v", err)
	}

	// drive ten more completions through and watch the cap
	var last entities.Flight
	for i := 0; i < constants.CompletedFlightsCap; i++ {
		g := store.Add(ctx, intake(fmt.Sprintf("CU-%03d", i)))
		if _, err := store.Activate(ctx, g.ID, false); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Complete(ctx, g.ID); err != nil {
			t.Fatal(err)
		}
		last = g
	}

	cols = store.Collections()
	if len(cols.Completed) != constants.CompletedFlightsCap {
		t.Fatalf("completed = %d, want cap %d", len(cols.Completed), constants.CompletedFlightsCap)
	}
	if cols.Completed[0].ID != last.ID {
		t.Error("newest completion should sit at the head")
	}
	// the very first completion fell off the end
	if _, err := store.Get(f.ID); !errors.Is(err, ErrFlightNotFound) {
		t.Errorf("evicted flight should be gone, got %v", err)
	}
}

func TestUpdateReplacesRecordInPlace(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))

	edited := f
	edited.ETD = "12:00"
	edited.Destination = "Varadero (VRA)"
	if err := store.Update(ctx, edited); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ETD != "12:00" || got.Destination != "Varadero (VRA)" {
		t.Errorf("updated flight = %+v", got)
	}

	// status changes are not allowed through update
	edited.Status = constants.FlightStatusCompleted
	if err := store.Update(ctx, edited); err == nil {
		t.Error("expected an error when update changes status")
	}

	edited.Status = constants.FlightStatusPending
	edited.ID = "no-such-id"
	if err := store.Update(ctx, edited); !errors.Is(err, ErrFlightNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteClearsActiveDesignation(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	f := store.Add(ctx, intake("CU-152"))
	if _, err := store.Activate(ctx, f.ID, false); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, f.ID, "completed"); !errors.Is(err, ErrFlightNotFound) {
		t.Fatalf("deleting from the wrong collection should fail, got %v", err)
	}
	if err := store.Delete(ctx, f.ID, "pending"); err != nil {
		t.Fatal(err)
	}
	if store.ActiveID() != "" {
		t.Error("deleting the active flight must clear the active designation")
	}
	if err := store.Delete(ctx, f.ID, "pending"); !errors.Is(err, ErrFlightNotFound) {
		t.Errorf("double delete should report not found, got %v", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store, kv := newTestStore()
	ctx := context.Background()

	g := store.Add(ctx, intake("CU-153"))
	if _, err := store.Activate(ctx, g.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Complete(ctx, g.ID); err != nil {
		t.Fatal(err)
	}

	f := store.Add(ctx, intake("CU-152"))
	if _, err := store.Activate(ctx, f.ID, false); err != nil {
		t.Fatal(err)
	}

	// a fresh store over the same KV rehydrates the same state
	reloaded := NewFlightStoreService(kv, nil)
	reloaded.Load(ctx)

	cols := reloaded.Collections()
	if len(cols.Pending) != 1 || len(cols.Completed) != 1 {
		t.Fatalf("reloaded pending/completed = %d/%d, want 1/1", len(cols.Pending), len(cols.Completed))
	}
	if reloaded.ActiveID() != f.ID {
		t.Errorf("active id = %q, want %q", reloaded.ActiveID(), f.ID)
	}
}

func TestLoadToleratesCorruptAndMissingBlobs(t *testing.T) {
	kv := db.NewMemoryKV()
	ctx := context.Background()

	if err := kv.Set(ctx, string(constants.StorageKeyPendingFlights), "{not json"); err != nil {
		t.Fatal(err)
	}

	store := NewFlightStoreService(kv, nil)
	store.Load(ctx)

	cols := store.Collections()
	if len(cols.Pending) != 0 || len(cols.Completed) != 0 {
		t.Error("corrupt storage must mean starting empty")
	}
}

func TestLoadDropsUnknownOperationKeys(t *testing.T) {
	kv := db.NewMemoryKV()
	ctx := context.Background()

	flights := []entities.Flight{{
		ID:     "f-1",
		Status: constants.FlightStatusPending,
		Operations: map[string]entities.OperationTimes{
			constants.TaskBoarding: {Start: "10:00"},
			"Not A Task":           {Start: "09:00"},
		},
	}}
	blob, _ := json.Marshal(flights)
	if err := kv.Set(ctx, string(constants.StorageKeyPendingFlights), string(blob)); err != nil {
		t.Fatal(err)
	}

	store := NewFlightStoreService(kv, nil)
	store.Load(ctx)

	f, err := store.Get("f-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Operations["Not A Task"]; ok {
		t.Error("unknown operation keys must be dropped on load")
	}
	if f.Operations[constants.TaskBoarding].Start != "10:00" {
		t.Error("known operation keys must survive load")
	}
}
