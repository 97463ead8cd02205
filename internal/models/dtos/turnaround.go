package dtos

import "github.com/thejasondev/groundops/internal/constants"

// ScheduledTurnaround is the clamped ground-time budget derived from the
// scheduled arrival and departure.
type ScheduledTurnaround struct {
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

// TurnaroundStatus is the live state of a turnaround, recomputed against
// wall-clock time. It is derived, never persisted.
type TurnaroundStatus struct {
	Phase              constants.TurnaroundPhase `json:"phase"`
	RemainingMinutes   int                       `json:"remaining_minutes"`
	RemainingFormatted string                    `json:"remaining_formatted"`
	ProgressPercentage float64                   `json:"progress_percentage"`
	DelayMinutes       int                       `json:"delay_minutes"`
	DelayStatus        constants.DelayStatus     `json:"delay_status"`
	DelayFormatted     string                    `json:"delay_formatted"`
}

// DelayDetail classifies a single leg (arrival or departure) of the detailed
// delay analysis. Status is "pending" until the actual time is recorded.
type DelayDetail struct {
	Status    constants.DelayStatus `json:"status"`
	Minutes   int                   `json:"minutes"`
	Formatted string                `json:"formatted"`
}

// DelayAnalysis is the report-only pair of independent delay
// classifications.
type DelayAnalysis struct {
	Arrival   DelayDetail `json:"arrival"`
	Departure DelayDetail `json:"departure"`
}
