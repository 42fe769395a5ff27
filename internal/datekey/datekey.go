// Package datekey implements the canonical DD.MM.YYYY date key used as the
// partition key for tasks and daily ratings. The fixed-width, zero-padded
// format is a storage contract: month queries rely on suffix matching
// against ".MM.YYYY", so every producer of a key must go through this
// package.
package datekey

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidFormat is returned when a string is not a valid DD.MM.YYYY key.
var ErrInvalidFormat = errors.New("invalid date format, expected DD.MM.YYYY")

// keyPattern matches the lexical shape of a date key. Calendar bounds
// (e.g. rejecting 31.02) are checked separately against the real calendar.
var keyPattern = regexp.MustCompile(`^(0[1-9]|[12]\d|3[01])\.(0[1-9]|1[012])\.(\d{4})$`)

// Format renders t as a date key, discarding the time-of-day component.
func Format(t time.Time) string {
	return fmt.Sprintf("%02d.%02d.%04d", t.Day(), int(t.Month()), t.Year())
}

// New builds a date key from components. The components are normalized by
// the calendar, so New(2026, time.February, 31) yields "03.03.2026"; use
// Parse to validate untrusted input instead.
func New(year int, month time.Month, day int) string {
	return Format(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Parse decodes a date key into a UTC midnight time.Time. It rejects keys
// that are lexically malformed as well as keys naming days that do not
// exist in the given month (e.g. "31.02.2026").
func Parse(key string) (time.Time, error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", key, ErrInvalidFormat)
	}

	var day, month, year int
	fmt.Sscanf(key, "%02d.%02d.%04d", &day, &month, &year)

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, fmt.Errorf("parsing %q: day out of range: %w", key, ErrInvalidFormat)
	}
	return t, nil
}

// Valid reports whether key is a well-formed date key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// MonthSuffix returns the ".MM.YYYY" suffix shared by every key in the
// given month, used for LIKE-based month queries.
func MonthSuffix(month time.Month, year int) string {
	return fmt.Sprintf(".%02d.%04d", int(month), year)
}

// Today returns the date key for the current local day.
func Today() string {
	return Format(time.Now())
}

// AddDays returns the key n calendar days after key (n may be negative).
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// Compare orders two keys chronologically: -1 if a is before b, 0 if they
// name the same day, +1 if a is after b. Both keys must be valid.
func Compare(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	switch {
	case ta.Before(tb):
		return -1, nil
	case ta.After(tb):
		return 1, nil
	default:
		return 0, nil
	}
}

// LastN returns the n date keys ending at end, oldest first. It is used to
// build the bounded task maps handed to the analytics functions.
func LastN(n int, end time.Time) []string {
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, Format(end.AddDate(0, 0, -i)))
	}
	return keys
}
