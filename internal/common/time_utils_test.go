package common

import (
	"fmt"
	"testing"
	"time"
)

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"00:01", 1},
		{"10:30", 630},
		{"23:59", 1439},
		{"", 0},
		{"not a time", 0},
		{"12", 0},
		{"ab:cd", 0},
	}
	for _, c := range cases {
		if got := TimeToMinutes(c.in); got != c.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMinutesToTimeRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			in := fmt.Sprintf("%02d:%02d", h, m)
			if got := MinutesToTime(TimeToMinutes(in)); got != in {
				t.Fatalf("round trip of %q produced %q", in, got)
			}
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
		{-5, "0m"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDurationBetween(t *testing.T) {
	cases := []struct {
		start, end string
		missing    string
		want       string
	}{
		{"10:00", "11:30", "-", "1h 30m"},
		{"10:00", "10:00", "-", "0m"},
		// crossing midnight adds a day
		{"23:50", "00:10", "-", "20m"},
		{"22:00", "02:00", "-", "4h"},
		// missing bounds return the sentinel of the call site
		{"", "10:00", "-", "-"},
		{"10:00", "", "", ""},
	}
	for _, c := range cases {
		if got := DurationBetween(c.start, c.end, c.missing); got != c.want {
			t.Errorf("DurationBetween(%q, %q, %q) = %q, want %q", c.start, c.end, c.missing, got, c.want)
		}
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 45, 0, time.Local)
	if got := MinutesSinceMidnight(now); got != 630 {
		t.Errorf("MinutesSinceMidnight = %d, want 630", got)
	}
}

func TestShortStationCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Havana (HAV)", "HAV"},
		{"Madrid", ""},
		{"Leg (TOOLONG)", ""},
	}
	for _, c := range cases {
		if got := ShortStationCode(c.in); got != c.want {
			t.Errorf("ShortStationCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
