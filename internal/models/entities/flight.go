package entities

import (
	"time"

	"github.com/thejasondev/groundops/internal/constants"
)

// OperationTimes holds the recorded timestamps for one turnaround task.
// Instantaneous tasks carry the same value in both fields; an unrecorded
// field is the empty string.
type OperationTimes struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Flight is a scheduled, active or completed ground movement.
type Flight struct {
	ID           string                    `json:"id"`
	FlightNumber string                    `json:"flight_number"`
	Airline      string                    `json:"airline"`
	Destination  string                    `json:"destination"`
	ETA          string                    `json:"eta"`
	ETD          string                    `json:"etd"`
	ATA          string                    `json:"ata,omitempty"`
	ATD          string                    `json:"atd,omitempty"`
	Status       constants.FlightStatus    `json:"status"`
	Operations   map[string]OperationTimes `json:"operations"`
	Notes        string                    `json:"notes"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// Clone returns a deep copy so store callers never alias internal state.
func (f *Flight) Clone() Flight {
	c := *f
	c.Operations = CloneOperations(f.Operations)
	return c
}

// ArrivalAnchorTime is the timestamp the live turnaround countdown starts
// from: the arrival task's end (aircraft on blocks).
func (f *Flight) ArrivalAnchorTime() string {
	return f.Operations[constants.ArrivalAnchorTask].End
}

// DepartureAnchorTime is the timestamp that closes the turnaround: the
// push-back task's start.
func (f *Flight) DepartureAnchorTime() string {
	return f.Operations[constants.DepartureAnchorTask].Start
}

// CloneOperations deep-copies an operations map, treating nil as empty.
func CloneOperations(ops map[string]OperationTimes) map[string]OperationTimes {
	c := make(map[string]OperationTimes, len(ops))
	for k, v := range ops {
		c[k] = v
	}
	return c
}

// EmptyOperations returns a fresh operations map covering every registry
// task.
func EmptyOperations() map[string]OperationTimes {
	ops := make(map[string]OperationTimes)
	for _, task := range constants.AllTasks() {
		ops[task] = OperationTimes{}
	}
	return ops
}
