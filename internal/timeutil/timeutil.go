// Package timeutil provides helpers for the HH:MM time-of-day strings
// attached to tasks and notification schedules.
package timeutil

import (
	"fmt"
	"regexp"
	"sort"
)

var timePattern = regexp.MustCompile(`^([0-1]\d|2[0-3]):([0-5]\d)$`)

// IsValid reports whether s is a zero-padded 24h HH:MM string.
func IsValid(s string) bool {
	return timePattern.MatchString(s)
}

// ToMinutes converts an HH:MM string to minutes since midnight.
// The input must be valid; invalid input returns 0.
func ToMinutes(s string) int {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var h, min int
	fmt.Sscanf(s, "%02d:%02d", &h, &min)
	return h*60 + min
}

// FromMinutes converts minutes since midnight back to HH:MM.
func FromMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Compare orders two HH:MM strings: -1, 0 or 1.
func Compare(a, b string) int {
	ma, mb := ToMinutes(a), ToMinutes(b)
	switch {
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	default:
		return 0
	}
}

// AddMinutes adds n minutes to an HH:MM string, wrapping around midnight
// in both directions.
func AddMinutes(s string, n int) string {
	const day = 24 * 60
	total := (ToMinutes(s) + n) % day
	if total < 0 {
		total += day
	}
	return FromMinutes(total)
}

// Timed is implemented by anything carrying an optional HH:MM time.
type Timed interface {
	TimeOfDay() *string
}

// SortTimed orders items by time ascending with untimed items last,
// preserving the relative order of equal elements.
func SortTimed[T Timed](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].TimeOfDay(), items[j].TimeOfDay()
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ToMinutes(*ti) < ToMinutes(*tj)
	})
}

// Period labels a part of the day.
type Period string

const (
	PeriodMorning   Period = "morning"   // 05:00-11:59
	PeriodAfternoon Period = "afternoon" // 12:00-16:59
	PeriodEvening   Period = "evening"   // 17:00-20:59
	PeriodNight     Period = "night"     // 21:00-04:59
)

// PeriodOf returns the period of day an HH:MM time falls into.
func PeriodOf(s string) Period {
	m := ToMinutes(s)
	switch {
	case m >= 5*60 && m < 12*60:
		return PeriodMorning
	case m >= 12*60 && m < 17*60:
		return PeriodAfternoon
	case m >= 17*60 && m < 21*60:
		return PeriodEvening
	default:
		return PeriodNight
	}
}
