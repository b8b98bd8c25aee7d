// Package timeutil provides the wall-clock arithmetic shared by the
// overlap detector, the grid layout engine, and reservation validation.
//
// Times of day are exchanged as "HH:MM" strings and dates as "yyyy-mm-dd"
// strings, matching the reservation wire format. All date helpers operate on
// local calendar fields so a reservation never drifts across midnight when
// the process runs in a different timezone than the operator.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the canonical date format used throughout the system.
const ISODateLayout = "2006-01-02"

// MalformedTimeError reports a time-of-day string that could not be parsed.
// It always indicates bad input or a programming error; values are never
// silently coerced.
type MalformedTimeError struct {
	Value string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time of day %q (want HH:MM)", e.Value)
}

/// ToMinutes parses an "HH:MM" time of day into minutes since midnight.
func ToMinutes(value string) (int, error) {
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, &MalformedTimeError{Value: value}
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, &MalformedTimeError{Value: value}
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, &MalformedTimeError{Value: value}
	}
	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight as a zero-padded "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// StartOfWeek returns the Monday on or before the given instant with the
// time of day zeroed. Weeks follow the ISO convention where Sunday is the
// last day, not the first.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// Go numbers Sunday as 0; shift so Monday becomes 0 and Sunday 6.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// AddDays advances a date by n calendar days, crossing month and year
// boundaries correctly.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatISODate renders the date's local calendar fields as "yyyy-mm-dd".
func FormatISODate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseISODate parses a "yyyy-mm-dd" string into a local midnight instant.
func ParseISODate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q (want yyyy-mm-dd): %w", value, err)
	}
	return t, nil
}
