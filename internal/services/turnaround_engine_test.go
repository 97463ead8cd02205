package services

import (
	"testing"
	"time"

	"github.com/thejasondev/groundops/internal/constants"
)

func clockAt(t *testing.T, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		t.Fatalf("bad test clock %q: %v", hhmm, err)
	}
	return time.Date(2025, 6, 1, parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
}

func TestComputeScheduled(t *testing.T) {
	engine := NewTurnaroundEngine()

	cases := []struct {
		name     string
		eta, etd string
		want     int
	}{
		{"normal gap", "10:00", "11:00", 60},
		{"short gap clamps to minimum", "10:00", "10:10", 30},
		{"long gap clamps to maximum", "08:00", "20:00", 480},
		{"overnight departure", "23:00", "01:00", 120},
		{"exactly minimum", "10:00", "10:30", 30},
		{"exactly maximum", "08:00", "16:00", 480},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := engine.ComputeScheduled(c.eta, c.etd)
			if got.Minutes != c.want {
				t.Errorf("ComputeScheduled(%s, %s) = %d minutes, want %d", c.eta, c.etd, got.Minutes, c.want)
			}
		})
	}

	if got := engine.ComputeScheduled("10:00", "11:30"); got.Formatted != "1h 30m" {
		t.Errorf("Formatted = %q, want %q", got.Formatted, "1h 30m")
	}
}

func TestComputeStatusWaiting(t *testing.T) {
	engine := NewTurnaroundEngine()

	status := engine.ComputeStatus("10:00", "11:00", "", "", clockAt(t, "09:45"))
	if status.Phase != constants.PhaseWaiting {
		t.Fatalf("phase = %s, want waiting", status.Phase)
	}
	if status.RemainingMinutes != 60 {
		t.Errorf("remaining = %d, want full budget 60", status.RemainingMinutes)
	}
	if status.ProgressPercentage != 0 {
		t.Errorf("progress = %v, want 0", status.ProgressPercentage)
	}
	if status.DelayStatus != constants.DelayOnTime {
		t.Errorf("delay status = %s, want on-time", status.DelayStatus)
	}
}

func TestComputeStatusActive(t *testing.T) {
	engine := NewTurnaroundEngine()

	status := engine.ComputeStatus("10:00", "11:00", "10:00", "", clockAt(t, "10:30"))
	if status.Phase != constants.PhaseActive {
		t.Fatalf("phase = %s, want active", status.Phase)
	}
	if status.RemainingMinutes != 30 {
		t.Errorf("remaining = %d, want 30", status.RemainingMinutes)
	}
	if status.ProgressPercentage != 50 {
		t.Errorf("progress = %v, want 50", status.ProgressPercentage)
	}
	// arrived on schedule, projection matches ETD
	if status.DelayMinutes != 0 || status.DelayStatus != constants.DelayOnTime {
		t.Errorf("delay = %d %s, want 0 on-time", status.DelayMinutes, status.DelayStatus)
	}
}

func TestComputeStatusOverdue(t *testing.T) {
	engine := NewTurnaroundEngine()

	status := engine.ComputeStatus("10:00", "11:00", "10:00", "", clockAt(t, "11:05"))
	if status.Phase != constants.PhaseOverdue {
		t.Fatalf("phase = %s, want overdue", status.Phase)
	}
	if status.RemainingMinutes != 0 {
		t.Errorf("remaining = %d, want 0", status.RemainingMinutes)
	}
	if status.ProgressPercentage != 100 {
		t.Errorf("progress = %v, want clamped 100", status.ProgressPercentage)
	}
}

func TestComputeStatusLateArrivalProjectsDelay(t *testing.T) {
	engine := NewTurnaroundEngine()

	// Arrived 20 late; full budget still needed, so departure projects 20
	// late.
	status := engine.ComputeStatus("10:00", "11:00", "10:20", "", clockAt(t, "10:30"))
	if status.DelayMinutes != 20 {
		t.Errorf("delay = %d, want 20", status.DelayMinutes)
	}
	if status.DelayStatus != constants.DelayDelayed {
		t.Errorf("delay status = %s, want delayed", status.DelayStatus)
	}
	if status.DelayFormatted != "Delayed by 20m" {
		t.Errorf("delay formatted = %q", status.DelayFormatted)
	}
}

func TestComputeStatusCompleted(t *testing.T) {
	engine := NewTurnaroundEngine()

	status := engine.ComputeStatus("10:00", "11:00", "10:00", "11:10", clockAt(t, "12:00"))
	if status.Phase != constants.PhaseCompleted {
		t.Fatalf("phase = %s, want completed", status.Phase)
	}
	if status.RemainingMinutes != 0 || status.ProgressPercentage != 100 {
		t.Errorf("remaining/progress = %d/%v, want 0/100", status.RemainingMinutes, status.ProgressPercentage)
	}
	if status.DelayMinutes != 10 {
		t.Errorf("delay = %d, want 10", status.DelayMinutes)
	}
	if status.DelayStatus != constants.DelayDelayed {
		t.Errorf("delay status = %s, want delayed", status.DelayStatus)
	}
}

func TestClassifyDelayDeadBand(t *testing.T) {
	engine := NewTurnaroundEngine()

	cases := []struct {
		minutes int
		want    constants.DelayStatus
	}{
		{4, constants.DelayOnTime},
		{5, constants.DelayDelayed},
		{-4, constants.DelayOnTime},
		{-5, constants.DelayEarly},
		{0, constants.DelayOnTime},
		{120, constants.DelayDelayed},
	}
	for _, c := range cases {
		if got, _ := engine.ClassifyDelay(c.minutes); got != c.want {
			t.Errorf("ClassifyDelay(%d) = %s, want %s", c.minutes, got, c.want)
		}
	}

	if _, formatted := engine.ClassifyDelay(-90); formatted != "Early by 1h 30m" {
		t.Errorf("formatted = %q, want %q", formatted, "Early by 1h 30m")
	}
	if _, formatted := engine.ClassifyDelay(3); formatted != "On time" {
		t.Errorf("formatted = %q, want %q", formatted, "On time")
	}
}

func TestComputeDelayAnalysis(t *testing.T) {
	engine := NewTurnaroundEngine()

	analysis := engine.ComputeDelayAnalysis("10:00", "11:00", "10:12", "")
	if analysis.Arrival.Status != constants.DelayDelayed || analysis.Arrival.Minutes != 12 {
		t.Errorf("arrival = %+v, want delayed by 12", analysis.Arrival)
	}
	if analysis.Departure.Status != constants.DelayPending {
		t.Errorf("departure = %+v, want pending", analysis.Departure)
	}

	analysis = engine.ComputeDelayAnalysis("10:00", "11:00", "09:50", "10:58")
	if analysis.Arrival.Status != constants.DelayEarly {
		t.Errorf("arrival = %+v, want early", analysis.Arrival)
	}
	if analysis.Departure.Status != constants.DelayOnTime {
		t.Errorf("departure = %+v, want on-time", analysis.Departure)
	}
}

func TestComputeStatusIsPureAcrossCalls(t *testing.T) {
	engine := NewTurnaroundEngine()

	now := clockAt(t, "10:30")
	first := engine.ComputeStatus("10:00", "11:00", "10:00", "", now)
	second := engine.ComputeStatus("10:00", "11:00", "10:00", "", now)
	if first != second {
		t.Errorf("same inputs produced different statuses: %+v vs %+v", first, second)
	}
}
