package entities

import "time"

// DraftSnapshot is the auto-saved, recoverable in-progress state of a
// flight's operation timestamps and notes. Snapshots older than the draft TTL
// are treated as absent on read.
type DraftSnapshot struct {
	FlightID    string                    `json:"flight_id"`
	Operations  map[string]OperationTimes `json:"operations"`
	Notes       string                    `json:"notes"`
	LastUpdated time.Time                 `json:"last_updated"`
}

// IsEmpty reports whether the snapshot carries no recorded timestamp and no
// notes. An all-empty draft is not worth persisting.
func (d *DraftSnapshot) IsEmpty() bool {
	if d.Notes != "" {
		return false
	}
	for _, op := range d.Operations {
		if op.Start != "" || op.End != "" {
			return false
		}
	}
	return true
}
