// Package timezone centralizes IANA timezone handling and civil-date math.
//
// Study progress is bucketed by the civil date in the user's timezone, so
// every "which day is this" decision must go through the helpers here rather
// than time.Time.Format in server code.
package timezone

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// TimezoneUTC is the fallback timezone.
	TimezoneUTC = "UTC"
	// TimezoneTaipei is the default timezone for the corpus audience.
	TimezoneTaipei = "Asia/Taipei"

	// DateKeyLayout is the canonical civil-date key, e.g. "2026-08-23".
	DateKeyLayout = "2006-01-02"
)

// Parse loads an IANA timezone name. An empty name resolves to UTC.
func Parse(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", name)
	}
	return loc, nil
}

// MustParse is Parse for trusted, compile-time constant names.
func MustParse(name string) *time.Location {
	loc, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// StartOfDay returns midnight of t's civil date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of t's civil date in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DateKey formats t's civil date in loc as "2006-01-02".
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// ParseDateKey parses a "2006-01-02" key back into midnight of that date
// in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date key %q", key)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same civil date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DateKey(a, loc) == DateKey(b, loc)
}

// DaysBetween returns the number of civil-date steps from a to b in loc.
// Consecutive dates return 1 regardless of clock times or DST shifts.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	start := StartOfDay(a, loc)
	end := StartOfDay(b, loc)
	days := 0
	for start.Before(end) {
		start = start.AddDate(0, 0, 1)
		days++
	}
	for end.Before(start) {
		end = end.AddDate(0, 0, 1)
		days--
	}
	return days
}
