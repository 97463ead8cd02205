package constants

type (
	APIStatus       string
	StorageKey      string
	CachePrefix     string
	FlightStatus    string
	TurnaroundPhase string
	DelayStatus     string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	StorageKeyPendingFlights   StorageKey = "groundops_pending_flights"
	StorageKeyCompletedFlights StorageKey = "groundops_completed_flights"
	StorageKeyDrafts           StorageKey = "groundops_operation_drafts"
	StorageKeyTheme            StorageKey = "groundops_theme_preference"

	CachePrefixDraft CachePrefix = "DRAFT_"

	FlightStatusPending    FlightStatus = "pending"
	FlightStatusInProgress FlightStatus = "in-progress"
	FlightStatusCompleted  FlightStatus = "completed"

	PhaseWaiting   TurnaroundPhase = "waiting"
	PhaseActive    TurnaroundPhase = "active"
	PhaseOverdue   TurnaroundPhase = "overdue"
	PhaseCompleted TurnaroundPhase = "completed"

	DelayEarly   DelayStatus = "early"
	DelayOnTime  DelayStatus = "on-time"
	DelayDelayed DelayStatus = "delayed"
	// DelayPending marks a delay-analysis slot whose actual time has not been
	// recorded yet.
	DelayPending DelayStatus = "pending"
)

// CompletedFlightsCap bounds the completed list: newest first, oldest evicted.
const CompletedFlightsCap = 10

// Scheduled turnaround bounds in minutes. These clamp unrealistic schedule
// data (a 10-minute or 14-hour gap between ETA and ETD is taken to be a data
// entry problem, not a real ground-time budget).
const (
	MinScheduledTurnaround = 30
	MaxScheduledTurnaround = 480
)

// DelayToleranceMinutes is the dead-band around the scheduled time inside
// which a flight is still reported as on time.
const DelayToleranceMinutes = 5
