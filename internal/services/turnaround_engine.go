package services

import (
	"time"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/models/dtos"
)

// TurnaroundEngine derives the live state of a turnaround from the scheduled
// times, the recorded anchor timestamps and a wall-clock instant. It holds no
// state of its own: every method is a pure function of its inputs, safe to
// call once a second from the status ticker. Callers supply a fresh now on
// each call.
type TurnaroundEngine struct{}

func NewTurnaroundEngine() *TurnaroundEngine {
	return &TurnaroundEngine{}
}

// ComputeScheduled derives the ground-time budget from the scheduled arrival
// and departure. A negative raw gap means the departure is past midnight and
// gets a one-day correction. The result is clamped into [30m, 8h]: the clamp
// bounds unrealistic schedule data, it does not measure anything real.
func (e *TurnaroundEngine) ComputeScheduled(eta, etd string) dtos.ScheduledTurnaround {
	raw := common.TimeToMinutes(etd) - common.TimeToMinutes(eta)
	if raw < 0 {
		raw += common.MinutesPerDay
	}
	if raw < constants.MinScheduledTurnaround {
		raw = constants.MinScheduledTurnaround
	}
	if raw > constants.MaxScheduledTurnaround {
		raw = constants.MaxScheduledTurnaround
	}
	return dtos.ScheduledTurnaround{
		Minutes:   raw,
		Formatted: common.FormatDuration(raw),
	}
}

// ComputeStatus derives the live phase, countdown, progress and delay
// classification. actualArrivalEnd and actualDepartureStart are the two
// timestamps that bound ground time; either may be empty when not yet
// recorded.
//
// The elapsed-time math assumes now and actualArrivalEnd fall on the same
// day; unlike DurationBetween, no midnight correction is applied here.
func (e *TurnaroundEngine) ComputeStatus(eta, etd, actualArrivalEnd, actualDepartureStart string, now time.Time) dtos.TurnaroundStatus {
	scheduled := e.ComputeScheduled(eta, etd)

	if actualArrivalEnd == "" {
		// Nothing consumed yet; no delay can be known before arrival.
		return dtos.TurnaroundStatus{
			Phase:              constants.PhaseWaiting,
			RemainingMinutes:   scheduled.Minutes,
			RemainingFormatted: common.FormatDuration(scheduled.Minutes),
			ProgressPercentage: 0,
			DelayMinutes:       0,
			DelayStatus:        constants.DelayOnTime,
			DelayFormatted:     "on time",
		}
	}

	if actualDepartureStart != "" {
		delay := common.TimeToMinutes(actualDepartureStart) - common.TimeToMinutes(etd)
		status, formatted := e.ClassifyDelay(delay)
		return dtos.TurnaroundStatus{
			Phase:              constants.PhaseCompleted,
			RemainingMinutes:   0,
			RemainingFormatted: common.FormatDuration(0),
			ProgressPercentage: 100,
			DelayMinutes:       delay,
			DelayStatus:        status,
			DelayFormatted:     formatted,
		}
	}

	elapsed := common.MinutesSinceMidnight(now) - common.TimeToMinutes(actualArrivalEnd)

	remaining := scheduled.Minutes - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := float64(elapsed) / float64(scheduled.Minutes) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	phase := constants.PhaseActive
	if remaining == 0 {
		phase = constants.PhaseOverdue
	}

	// Project the departure from the arrival anchor plus the full budget and
	// compare against the schedule.
	projectedDeparture := common.TimeToMinutes(actualArrivalEnd) + scheduled.Minutes
	delay := projectedDeparture - common.TimeToMinutes(etd)
	status, formatted := e.ClassifyDelay(delay)

	return dtos.TurnaroundStatus{
		Phase:              phase,
		RemainingMinutes:   remaining,
		RemainingFormatted: common.FormatDuration(remaining),
		ProgressPercentage: progress,
		DelayMinutes:       delay,
		DelayStatus:        status,
		DelayFormatted:     formatted,
	}
}

// ClassifyDelay maps a signed delay in minutes onto the early / on-time /
// delayed buckets. The five-minute dead-band is a deliberate operational
// tolerance.
func (e *TurnaroundEngine) ClassifyDelay(delayMinutes int) (constants.DelayStatus, string) {
	switch {
	case delayMinutes <= -constants.DelayToleranceMinutes:
		return constants.DelayEarly, "Early by " + common.FormatDuration(-delayMinutes)
	case delayMinutes >= constants.DelayToleranceMinutes:
		return constants.DelayDelayed, "Delayed by " + common.FormatDuration(delayMinutes)
	default:
		return constants.DelayOnTime, "On time"
	}
}

// ComputeDelayAnalysis independently classifies the arrival and departure
// delays for the report, using the same dead-band as the live status. A leg
// whose actual time is missing is tagged pending.
func (e *TurnaroundEngine) ComputeDelayAnalysis(eta, etd, actualArrivalEnd, actualDepartureStart string) dtos.DelayAnalysis {
	return dtos.DelayAnalysis{
		Arrival:   e.legDelay(eta, actualArrivalEnd),
		Departure: e.legDelay(etd, actualDepartureStart),
	}
}

func (e *TurnaroundEngine) legDelay(scheduled, actual string) dtos.DelayDetail {
	if actual == "" {
		return dtos.DelayDetail{
			Status:    constants.DelayPending,
			Formatted: "Pending",
		}
	}
	delay := common.TimeToMinutes(actual) - common.TimeToMinutes(scheduled)
	status, formatted := e.ClassifyDelay(delay)
	return dtos.DelayDetail{
		Status:    status,
		Minutes:   delay,
		Formatted: formatted,
	}
}
