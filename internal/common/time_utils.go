package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the wall-clock wrap-around used for midnight rollover.
const MinutesPerDay = 1440

// TimeToMinutes converts an "HH:MM" wall-clock string to minutes since local
// midnight. Empty or malformed input yields 0 (midnight) rather than an
// error; downstream display code relies on always getting something usable.
func TimeToMinutes(t string) int {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0
	}
	h, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		return 0
	}
	return h*60 + m
}

// MinutesToTime formats minutes-since-midnight as zero-padded "HH:MM". It
// does not wrap: callers wanting a wall-clock string must normalize m into
// [0, 1439] first.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatDuration renders a minute count as "Xh Ym", "Xh" or "Ym". Negative
// input clamps to "0m".
func FormatDuration(m int) string {
	if m < 0 {
		m = 0
	}
	h := m / 60
	mins := m % 60
	switch {
	case h > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", h, mins)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// DurationBetween formats the elapsed time from start to end. A negative raw
// difference is assumed to have crossed midnight and is corrected by one day.
// When either bound is missing the sentinel is returned instead: report
// contexts pass "-", the operational UI passes "".
func DurationBetween(start, end, missing string) string {
	if start == "" || end == "" {
		return missing
	}
	diff := TimeToMinutes(end) - TimeToMinutes(start)
	if diff < 0 {
		diff += MinutesPerDay
	}
	return FormatDuration(diff)
}

// MinutesSinceMidnight extracts the wall-clock minute offset of an instant.
// Only hours and minutes are significant.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
