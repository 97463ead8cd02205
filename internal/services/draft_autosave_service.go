package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/db"
	"github.com/thejasondev/groundops/internal/logging"
	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/models/entities"
)

// SaveStatus is the observable state of the auto-save pipeline.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "idle"
	SaveSaving SaveStatus = "saving"
	SaveSaved  SaveStatus = "saved"
	SaveError  SaveStatus = "error"
)

const (
	// DefaultAutosaveDebounce collapses rapid edits into one write: a new
	// change supersedes the pending save, it is never queued behind it.
	DefaultAutosaveDebounce = 750 * time.Millisecond

	// autosaveGrace holds back saves right after a flight is opened: an edit
	// in this window is deferred to the end of the window instead of written
	// immediately, so the just-loaded state is never persisted as if it were
	// a user edit.
	autosaveGrace = 2 * time.Second

	// DraftTTL expires snapshots; expired entries are ignored on read and
	// cleaned up lazily, never swept.
	DraftTTL = 24 * time.Hour

	savedRevert = 1 * time.Second
	errorRevert = 2 * time.Second
)

// DraftAutosaveService persists the in-progress operation timestamps and
// notes of the active flight. Saves are debounced per flight, skipped when
// the content hash matches the last written snapshot, and skipped when the
// snapshot is entirely empty. The go-cache layer fronts durable storage so
// recovery does not always round-trip through the KV collaborator.
type DraftAutosaveService struct {
	mu sync.Mutex

	kv      db.KVStore
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry

	debounce time.Duration
	clock    func() time.Time

	timers   map[string]*time.Timer
	pending  map[string]entities.DraftSnapshot
	lastHash map[string]string
	openedAt map[string]time.Time

	status      SaveStatus
	statusTimer *time.Timer
	onStatus    func(SaveStatus)
}

func NewDraftAutosaveService(kv db.KVStore, cache common.CacheInterface, metricsReg *metrics.MetricsRegistry, debounce time.Duration) *DraftAutosaveService {
	if debounce <= 0 {
		debounce = DefaultAutosaveDebounce
	}
	return &DraftAutosaveService{
		kv:       kv,
		cache:    cache,
		metrics:  metricsReg,
		debounce: debounce,
		clock:    time.Now,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]entities.DraftSnapshot),
		lastHash: make(map[string]string),
		openedAt: make(map[string]time.Time),
		status:   SaveIdle,
	}
}

// OnStatusChange registers the save-status observer. The dashboard uses it
// to drive the saving/saved indicator.
func (s *DraftAutosaveService) OnStatusChange(fn func(SaveStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

// Status returns the current save status.
func (s *DraftAutosaveService) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Open resolves the starting state for a flight entering operations mode.
// Precedence: an unexpired draft snapshot, then the flight's own persisted
// operations and notes when non-empty, then a fresh map covering every
// registry task.
func (s *DraftAutosaveService) Open(ctx context.Context, flight entities.Flight) dtos.DraftRecoveryDto {
	now := s.clock()

	s.mu.Lock()
	s.openedAt[flight.ID] = now
	s.mu.Unlock()

	if draft, ok := s.lookupDraft(ctx, flight.ID, now); ok {
		s.rememberHash(flight.ID, draft)
		return dtos.DraftRecoveryDto{
			FlightID:   flight.ID,
			Operations: entities.CloneOperations(draft.Operations),
			Notes:      draft.Notes,
			Source:     "draft",
		}
	}

	own := entities.DraftSnapshot{
		FlightID:   flight.ID,
		Operations: flight.Operations,
		Notes:      flight.Notes,
	}
	if !own.IsEmpty() {
		s.rememberHash(flight.ID, own)
		return dtos.DraftRecoveryDto{
			FlightID:   flight.ID,
			Operations: entities.CloneOperations(flight.Operations),
			Notes:      flight.Notes,
			Source:     "flight",
		}
	}

	empty := entities.DraftSnapshot{FlightID: flight.ID, Operations: entities.EmptyOperations()}
	s.rememberHash(flight.ID, empty)
	return dtos.DraftRecoveryDto{
		FlightID:   flight.ID,
		Operations: empty.Operations,
		Notes:      "",
		Source:     "empty",
	}
}

// Queue schedules a debounced save of the flight's current operations and
// notes. A change inside the grace period after Open is deferred until the
// period ends rather than dropped; the hash seeded by Open keeps the loaded
// state itself from being re-persisted. A change while a save is pending
// replaces it and restarts the timer.
func (s *DraftAutosaveService) Queue(ctx context.Context, flightID string, ops map[string]entities.OperationTimes, notes string) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.debounce
	if opened, ok := s.openedAt[flightID]; ok {
		if untilGraceEnd := autosaveGrace - now.Sub(opened); untilGraceEnd > delay {
			delay = untilGraceEnd
		}
	}

	s.pending[flightID] = entities.DraftSnapshot{
		FlightID:    flightID,
		Operations:  entities.CloneOperations(ops),
		Notes:       notes,
		LastUpdated: now,
	}

	if t, ok := s.timers[flightID]; ok {
		t.Stop()
	}
	s.timers[flightID] = time.AfterFunc(delay, func() {
		s.Flush(context.Background(), flightID)
	})
}

// Flush writes the pending snapshot for the flight immediately, cancelling
// the debounce timer. Used by the timer callback and on shutdown.
func (s *DraftAutosaveService) Flush(ctx context.Context, flightID string) {
	s.mu.Lock()
	if t, ok := s.timers[flightID]; ok {
		t.Stop()
		delete(s.timers, flightID)
	}
	snapshot, ok := s.pending[flightID]
	if ok {
		delete(s.pending, flightID)
	}
	if !ok {
		s.mu.Unlock()
		return
	}

	hash := snapshotHash(snapshot)
	if hash == s.lastHash[flightID] {
		s.skip("unchanged")
		s.mu.Unlock()
		return
	}
	if snapshot.IsEmpty() {
		s.skip("empty")
		s.mu.Unlock()
		return
	}

	s.setStatusLocked(SaveSaving, 0)
	s.mu.Unlock()

	err := s.write(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.metrics != nil {
			s.metrics.AutosaveErrorsTotal.Inc()
		}
		logging.Warn("Draft autosave failed", "flight_id", flightID, "error", err.Error())
		s.setStatusLocked(SaveError, errorRevert)
		return
	}

	s.lastHash[flightID] = hash
	s.cache.Set(string(constants.CachePrefixDraft)+flightID, snapshot, DraftTTL)
	if s.metrics != nil {
		s.metrics.AutosavesWrittenTotal.Inc()
	}
	s.setStatusLocked(SaveSaved, savedRevert)
}

// Discard drops the flight's draft: pending save, cache entry and the
// persisted snapshot.
func (s *DraftAutosaveService) Discard(ctx context.Context, flightID string) {
	s.mu.Lock()
	if t, ok := s.timers[flightID]; ok {
		t.Stop()
		delete(s.timers, flightID)
	}
	delete(s.pending, flightID)
	delete(s.lastHash, flightID)
	delete(s.openedAt, flightID)
	s.mu.Unlock()

	s.cache.Delete(string(constants.CachePrefixDraft) + flightID)

	drafts := s.readAll(ctx)
	if _, ok := drafts[flightID]; !ok {
		return
	}
	delete(drafts, flightID)
	s.writeAll(ctx, drafts)
}

// rememberHash seeds change detection with the content a flight was opened
// with, so re-saving the loaded state is a no-op.
func (s *DraftAutosaveService) rememberHash(flightID string, snapshot entities.DraftSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHash[flightID] = snapshotHash(snapshot)
}

// lookupDraft finds an unexpired snapshot for the flight, checking the cache
// tier first.
func (s *DraftAutosaveService) lookupDraft(ctx context.Context, flightID string, now time.Time) (entities.DraftSnapshot, bool) {
	if val, found := s.cache.Get(string(constants.CachePrefixDraft) + flightID); found {
		if draft, ok := val.(entities.DraftSnapshot); ok && !s.expired(draft, now) {
			return draft, true
		}
	}

	drafts := s.readAll(ctx)
	draft, ok := drafts[flightID]
	if !ok || s.expired(draft, now) {
		return entities.DraftSnapshot{}, false
	}
	s.cache.Set(string(constants.CachePrefixDraft)+flightID, draft, DraftTTL)
	return draft, true
}

func (s *DraftAutosaveService) expired(d entities.DraftSnapshot, now time.Time) bool {
	return now.Sub(d.LastUpdated) > DraftTTL
}

// write stores the snapshot into the persisted drafts map. The full map is
// rewritten on each save; last write wins.
func (s *DraftAutosaveService) write(ctx context.Context, snapshot entities.DraftSnapshot) error {
	drafts := s.readAll(ctx)
	drafts[snapshot.FlightID] = snapshot
	return s.writeAll(ctx, drafts)
}

func (s *DraftAutosaveService) readAll(ctx context.Context) map[string]entities.DraftSnapshot {
	drafts := make(map[string]entities.DraftSnapshot)
	blob, found, err := s.kv.Get(ctx, string(constants.StorageKeyDrafts))
	if err != nil {
		logging.Warn("Failed to read drafts, treating as empty", "error", err.Error())
		return drafts
	}
	if !found || blob == "" {
		return drafts
	}
	if err := json.Unmarshal([]byte(blob), &drafts); err != nil {
		logging.Warn("Corrupt drafts blob, treating as empty", "error", err.Error())
		return make(map[string]entities.DraftSnapshot)
	}
	return drafts
}

func (s *DraftAutosaveService) writeAll(ctx context.Context, drafts map[string]entities.DraftSnapshot) error {
	blob, err := json.Marshal(drafts)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, string(constants.StorageKeyDrafts), string(blob))
}

func (s *DraftAutosaveService) skip(reason string) {
	if s.metrics != nil {
		s.metrics.AutosavesSkippedTotal.WithLabelValues(reason).Inc()
	}
}

// setStatusLocked transitions the save status and schedules the automatic
// revert to idle. Callers hold the lock.
func (s *DraftAutosaveService) setStatusLocked(status SaveStatus, revertAfter time.Duration) {
	s.status = status
	if s.onStatus != nil {
		s.onStatus(status)
	}
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	if revertAfter > 0 {
		s.statusTimer = time.AfterFunc(revertAfter, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.status = SaveIdle
			if s.onStatus != nil {
				s.onStatus(SaveIdle)
			}
		})
	}
}

// snapshotHash fingerprints the content that matters for change detection.
// json.Marshal sorts map keys, so the serialization is deterministic.
func snapshotHash(d entities.DraftSnapshot) string {
	payload := struct {
		Operations map[string]entities.OperationTimes `json:"operations"`
		Notes      string                             `json:"notes"`
	}{Operations: d.Operations, Notes: d.Notes}

	blob, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
