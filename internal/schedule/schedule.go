// Package schedule normalizes per-day dose schedules to fixed-length HH:MM
// lists.
package schedule

import (
	"regexp"
	"strings"
)

// DefaultDoseTime fills schedule slots that have no usable requested or
// previous value.
const DefaultDoseTime = "08:00"

var doseTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Valid reports whether s is a well-formed 24h HH:MM dose time. Hours must
// be two digits; "9:00" is rejected.
func Valid(s string) bool {
	return doseTimeRe.MatchString(strings.TrimSpace(s))
}

// Clean returns the trimmed form of a valid dose time and whether it was
// valid at all.
func Clean(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !doseTimeRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// Normalize produces a schedule with exactly timesPerDay slots. A requested
// slot wins when valid; an invalid requested slot falls back to the default
// rather than the previous value, so a bad edit is visible instead of
// silently reverting. Absent slots keep the previous value when that value
// is valid.
func Normalize(timesPerDay int, requested, previous []string) (int, []string) {
	if timesPerDay < 1 {
		timesPerDay = 1
	}

	times := make([]string, timesPerDay)
	for i := 0; i < timesPerDay; i++ {
		switch {
		case i < len(requested):
			if t, ok := Clean(requested[i]); ok {
				times[i] = t
			} else {
				times[i] = DefaultDoseTime
			}
		case i < len(previous):
			if t, ok := Clean(previous[i]); ok {
				times[i] = t
			} else {
				times[i] = DefaultDoseTime
			}
		default:
			times[i] = DefaultDoseTime
		}
	}
	return timesPerDay, times
}

// Backfill derives the previous schedule for a stored medication, seeding
// from a legacy scalar dose time when the stored list is empty.
func Backfill(doseTimes []string, legacyTime string) []string {
	if len(doseTimes) > 0 {
		return doseTimes
	}
	if legacyTime != "" {
		return []string{legacyTime}
	}
	return nil
}
