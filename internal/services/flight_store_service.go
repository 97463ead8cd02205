package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/logging"
	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/models/entities"
)

var (
	ErrFlightNotFound             = errors.New("flight not found")
	ErrSwitchConfirmationRequired = errors.New("another flight is in progress, switch confirmation required")
	ErrFlightCompleted            = errors.New("completed flights cannot be modified")
	ErrFlightNotActive            = errors.New("flight is not in progress")
	ErrUnknownTask                = errors.New("unknown turnaround task")
	ErrEndBeforeStart             = errors.New("end cannot be recorded before start")
	ErrUnknownCollection          = errors.New("unknown collection")
)

// DraftDiscarder lets the store clear a flight's draft snapshot on
// completion without depending on the autosave service directly.
type DraftDiscarder interface {
	Discard(ctx context.Context, flightID string)
}

// FlightStoreService owns the flight collections. Records live in a single
// arena map keyed by id with ordered id lists for the pending and completed
// views; the single activeID field makes "at most one in-progress flight" a
// structural invariant rather than something enforced by scanning.
//
// Every mutation persists both full collections to the KV collaborator.
// Storage failures degrade the store to in-memory operation for the session.
type FlightStoreService struct {
	mu           sync.RWMutex
	flights      map[string]*entities.Flight
	pendingIDs   []string
	completedIDs []string
	activeID     string

	kv      db.KVStore
	drafts  DraftDiscarder
	metrics *metrics.MetricsRegistry
}

func NewFlightStoreService(kv db.KVStore, metricsReg *metrics.MetricsRegistry) *FlightStoreService {
	return &FlightStoreService{
		flights: make(map[string]*entities.Flight),
		kv:      kv,
		metrics: metricsReg,
	}
}

// SetDraftDiscarder wires the autosave service in after construction.
func (s *FlightStoreService) SetDraftDiscarder(d DraftDiscarder) {
	s.drafts = d
}

// Load rehydrates both collections from storage. Corrupt or missing blobs
// mean starting empty, never a failure.
func (s *FlightStoreService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.readCollection(ctx, string(constants.StorageKeyPendingFlights))
	completed := s.readCollection(ctx, string(constants.StorageKeyCompletedFlights))

	s.flights = make(map[string]*entities.Flight)
	s.pendingIDs = s.pendingIDs[:0]
	s.completedIDs = s.completedIDs[:0]
	s.activeID = ""

	for i := range pending {
		f := pending[i]
		sanitizeOperations(&f)
		if f.Status == constants.FlightStatusInProgress {
			if s.activeID == "" {
				s.activeID = f.ID
			} else {
				// Only one flight may be active; extras from a corrupt blob
				// are demoted.
				f.Status = constants.FlightStatusPending
			}
		}
		s.flights[f.ID] = &f
		s.pendingIDs = append(s.pendingIDs, f.ID)
	}

	for i := range completed {
		if len(s.completedIDs) >= constants.CompletedFlightsCap {
			break
		}
		f := completed[i]
		sanitizeOperations(&f)
		f.Status = constants.FlightStatusCompleted
		s.flights[f.ID] = &f
		s.completedIDs = append(s.completedIDs, f.ID)
	}

	s.setActiveGauge()
	logging.Info("Flight store loaded",
		"pending", len(s.pendingIDs),
		"completed", len(s.completedIDs),
		"active_id", s.activeID,
	)
}

func (s *FlightStoreService) readCollection(ctx context.Context, key string) []entities.Flight {
	blob, found, err := s.kv.Get(ctx, key)
	if err != nil {
		logging.Warn("Failed to read flight collection, starting empty", "key", key, "error", err.Error())
		return nil
	}
	if !found || blob == "" {
		return nil
	}
	var flights []entities.Flight
	if err := json.Unmarshal([]byte(blob), &flights); err != nil {
		logging.Warn("Corrupt flight collection blob, starting empty", "key", key, "error", err.Error())
		return nil
	}
	return flights
}

// Add creates a pending flight from the intake payload and prepends it to
// the pending list. The form collaborator already validated the payload.
func (s *FlightStoreService) Add(ctx context.Context, req dtos.FlightIntakeRequest) entities.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &entities.Flight{
		ID:           uuid.New().String(),
		FlightNumber: req.FlightNumber,
		Airline:      req.Airline,
		Destination:  req.Destination,
		ETA:          req.ETA,
		ETD:          req.ETD,
		Status:       constants.FlightStatusPending,
		Operations:   entities.EmptyOperations(),
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
	}
	s.flights[f.ID] = f
	s.pendingIDs = append([]string{f.ID}, s.pendingIDs...)
	s.persist(ctx)

	logging.Info("Flight created", "flight_id", f.ID, "flight_number", f.FlightNumber)
	return f.Clone()
}

// Get returns a copy of one record.
func (s *FlightStoreService) Get(id string) (entities.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[id]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	return f.Clone(), nil
}

// ActiveID returns the id of the in-progress flight, or "".
func (s *FlightStoreService) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Collections returns both ordered flight lists.
func (s *FlightStoreService) Collections() dtos.FlightCollectionsDto {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := dtos.FlightCollectionsDto{
		Pending:   make([]entities.Flight, 0, len(s.pendingIDs)),
		Completed: make([]entities.Flight, 0, len(s.completedIDs)),
		ActiveID:  s.activeID,
	}
	for _, id := range s.pendingIDs {
		out.Pending = append(out.Pending, s.flights[id].Clone())
	}
	for _, id := range s.completedIDs {
		out.Completed = append(out.Completed, s.flights[id].Clone())
	}
	return out
}

// Activate marks the flight in-progress. When a different flight already is,
// the caller must have collected an explicit switch confirmation from the
// operator: the demoted flight goes back to pending with its recorded
// operations intact.
func (s *FlightStoreService) Activate(ctx context.Context, id string, confirmSwitch bool) (entities.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	if f.Status == constants.FlightStatusCompleted {
		return entities.Flight{}, ErrFlightCompleted
	}

	if s.activeID != "" && s.activeID != id {
		if !confirmSwitch {
			return entities.Flight{}, ErrSwitchConfirmationRequired
		}
		prev := s.flights[s.activeID]
		prev.Status = constants.FlightStatusPending
		logging.Info("Active flight demoted on switch",
			"flight_id", prev.ID,
			"flight_number", prev.FlightNumber,
		)
	}

	f.Status = constants.FlightStatusInProgress
	s.activeID = id
	s.setActiveGauge()
	s.persist(ctx)

	logging.Info("Flight activated", "flight_id", f.ID, "flight_number", f.FlightNumber)
	return f.Clone(), nil
}

// RecordOperation writes one timestamp into the active flight's operations
// map. Instantaneous tasks write start and end together in the same action.
// The end-before-start rule is re-checked here even though the UI already
// disables the action.
func (s *FlightStoreService) RecordOperation(ctx context.Context, id, task, field, value string) (entities.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	if f.Status != constants.FlightStatusInProgress {
		return entities.Flight{}, ErrFlightNotActive
	}
	if !constants.IsKnownTask(task) {
		return entities.Flight{}, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}

	op := f.Operations[task]
	if constants.IsInstantaneous(task) {
		op.Start = value
		op.End = value
	} else {
		switch field {
		case "start":
			op.Start = value
		case "end":
			if op.Start == "" {
				return entities.Flight{}, ErrEndBeforeStart
			}
			op.End = value
		default:
			return entities.Flight{}, fmt.Errorf("unknown operation field %q", field)
		}
	}
	f.Operations[task] = op
	s.persist(ctx)

	return f.Clone(), nil
}

// SetNotes replaces the active flight's notes.
func (s *FlightStoreService) SetNotes(ctx context.Context, id, notes string) (entities.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	if f.Status == constants.FlightStatusCompleted {
		return entities.Flight{}, ErrFlightCompleted
	}
	f.Notes = notes
	s.persist(ctx)
	return f.Clone(), nil
}

// Update replaces the stored record matching flight.ID. The record must
// already live in the collection matching its status.
func (s *FlightStoreService) Update(ctx context.Context, flight entities.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.flights[flight.ID]
	if !ok {
		return ErrFlightNotFound
	}
	if current.Status != flight.Status {
		return fmt.Errorf("status of %s cannot change through update", flight.ID)
	}
	sanitizeOperations(&flight)
	*current = flight
	s.persist(ctx)
	return nil
}

// Complete finalizes the flight: the actual arrival and departure times are
// taken from the arrival and departure tasks' start fields. (The live
// countdown anchors on the arrival task's end; finalization has always read
// start for both, and that behavior is kept.) The record moves to the head
// of the completed list, the oldest entry past the cap is evicted, and any
// draft snapshot is discarded.
func (s *FlightStoreService) Complete(ctx context.Context, id string) (entities.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	if f.Status == constants.FlightStatusCompleted {
		return entities.Flight{}, ErrFlightCompleted
	}
	// Finalization is only reachable from the in-progress state; a pending
	// flight must be activated first.
	if f.Status != constants.FlightStatusInProgress {
		return entities.Flight{}, ErrFlightNotActive
	}

	f.ATA = f.Operations[constants.ArrivalAnchorTask].Start
	f.ATD = f.Operations[constants.DepartureAnchorTask].Start
	f.Status = constants.FlightStatusCompleted

	s.pendingIDs = removeID(s.pendingIDs, id)
	s.completedIDs = append([]string{id}, s.completedIDs...)
	for len(s.completedIDs) > constants.CompletedFlightsCap {
		evicted := s.completedIDs[len(s.completedIDs)-1]
		s.completedIDs = s.completedIDs[:len(s.completedIDs)-1]
		delete(s.flights, evicted)
	}

	if s.activeID == id {
		s.activeID = ""
	}
	s.setActiveGauge()
	s.persist(ctx)

	if s.drafts != nil {
		s.drafts.Discard(ctx, id)
	}
	if s.metrics != nil {
		s.metrics.FlightsCompletedTotal.Inc()
	}

	logging.Info("Flight completed",
		"flight_id", f.ID,
		"flight_number", f.FlightNumber,
		"ata", f.ATA,
		"atd", f.ATD,
	)
	return f.Clone(), nil
}

// Delete removes the flight from the named collection ("pending" or
// "completed"). Deleting the active flight clears the active designation.
func (s *FlightStoreService) Delete(ctx context.Context, id, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return ErrFlightNotFound
	}

	switch collection {
	case "pending":
		if !containsID(s.pendingIDs, id) {
			return ErrFlightNotFound
		}
		s.pendingIDs = removeID(s.pendingIDs, id)
	case "completed":
		if !containsID(s.completedIDs, id) {
			return ErrFlightNotFound
		}
		s.completedIDs = removeID(s.completedIDs, id)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if s.activeID == id {
		s.activeID = ""
	}
	delete(s.flights, id)
	s.setActiveGauge()
	s.persist(ctx)

	logging.Info("Flight deleted", "flight_id", id, "collection", collection)
	return nil
}

// persist serializes both full collections. Always the whole snapshot, never
// a delta; last write wins. Callers hold the lock.
func (s *FlightStoreService) persist(ctx context.Context) {
	s.writeCollection(ctx, string(constants.StorageKeyPendingFlights), s.pendingIDs)
	s.writeCollection(ctx, string(constants.StorageKeyCompletedFlights), s.completedIDs)
}

func (s *FlightStoreService) writeCollection(ctx context.Context, key string, ids []string) {
	flights := make([]entities.Flight, 0, len(ids))
	for _, id := range ids {
		flights = append(flights, *s.flights[id])
	}
	blob, err := json.Marshal(flights)
	if err != nil {
		logging.Error("Failed to marshal flight collection", "key", key, "error", err.Error())
		return
	}

	start := time.Now()
	err = s.kv.Set(ctx, key, string(blob))
	if s.metrics != nil {
		s.metrics.StorageOpsTotal.WithLabelValues("set").Inc()
		s.metrics.StorageOpDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.StorageFailures.WithLabelValues("set").Inc()
		}
		logging.Warn("Failed to persist flight collection, continuing in memory",
			"key", key,
			"error", err.Error(),
		)
	}
}

func (s *FlightStoreService) setActiveGauge() {
	if s.metrics == nil {
		return
	}
	if s.activeID != "" {
		s.metrics.FlightsActiveGauge.Set(1)
	} else {
		s.metrics.FlightsActiveGauge.Set(0)
	}
}

// sanitizeOperations drops operation keys that are not registry tasks and
// fills in any missing ones.
func sanitizeOperations(f *entities.Flight) {
	ops := entities.EmptyOperations()
	for task, times := range f.Operations {
		if constants.IsKnownTask(task) {
			ops[task] = times
		}
	}
	f.Operations = ops
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
