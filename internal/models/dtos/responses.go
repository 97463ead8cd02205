package dtos

import (
	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/models/entities"
)

// APIResponse is the standard JSON envelope for every endpoint.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// FlightCollectionsDto lists both flight collections for the dashboard
// tables.
type FlightCollectionsDto struct {
	Pending   []entities.Flight `json:"pending"`
	Completed []entities.Flight `json:"completed"`
	ActiveID  string            `json:"active_id,omitempty"`
}

// FlightDetailDto is a single record plus its live turnaround status. Status
// is nil when the flight has no schedule to compute against.
type FlightDetailDto struct {
	Flight     entities.Flight      `json:"flight"`
	Scheduled  *ScheduledTurnaround `json:"scheduled_turnaround,omitempty"`
	Turnaround *TurnaroundStatus    `json:"turnaround_status,omitempty"`
}

// DraftRecoveryDto is the resolved starting state when a flight is opened
// for operations.
type DraftRecoveryDto struct {
	FlightID   string                             `json:"flight_id"`
	Operations map[string]entities.OperationTimes `json:"operations"`
	Notes      string                             `json:"notes"`
	Source     string                             `json:"source"` // draft | flight | empty
}

// SaveStatusDto reports the auto-save state after a mutation.
type SaveStatusDto struct {
	SaveStatus string `json:"save_status"`
}

// ThemeDto carries the persisted dashboard theme preference.
type ThemeDto struct {
	Theme string `json:"theme"`
}

// OperationsReportDto is the assembled report for a completed flight.
type OperationsReportDto struct {
	Flight        entities.Flight     `json:"flight"`
	Scheduled     ScheduledTurnaround `json:"scheduled_turnaround"`
	Rows          []ReportRow         `json:"rows"`
	ActualGround  string              `json:"actual_ground_time"`
	DelaySummary  DelaySummary        `json:"delay_summary"`
	DelayAnalysis DelayAnalysis       `json:"delay_analysis"`
}

// ReportRow is one turnaround task line in the report table.
type ReportRow struct {
	Task          string `json:"task"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Duration      string `json:"duration"`
	Instantaneous bool   `json:"instantaneous"`
}

// DelaySummary is the final departure-delay classification.
type DelaySummary struct {
	Minutes   int                   `json:"minutes"`
	Status    constants.DelayStatus `json:"status"`
	Formatted string                `json:"formatted"`
}
