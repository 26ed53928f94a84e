package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparseableDate is returned when no accepted date layout matched.
var ErrUnparseableDate = errors.New("unparseable date")

// DayLayout is the canonical textual day form every table stores and every
// comparison uses: zero-padded day.month.year.
const DayLayout = "02.01.2006"

// Accepted input layouts, tried in this exact order. The order is the
// disambiguation policy: "01.02.2024" is always February 1st, never
// January 2nd.
var dayLayouts = []string{
	"02.01.2006", // canonical
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// Generic fallbacks for strings none of the explicit layouts match.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-01-2006",
}

// ParseDay parses a calendar date in any accepted textual convention and
// returns it truncated to midnight UTC.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrUnparseableDate)
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// FormatDay renders a time in the canonical day form.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// NormalizeDay converts any accepted date string to the canonical form.
// Everything behind the service boundary stores only this form.
func NormalizeDay(s string) (string, error) {
	t, err := ParseDay(s)
	if err != nil {
		return "", err
	}
	return FormatDay(t), nil
}

// Today is the canonical form of the current local day.
func Today() string {
	return FormatDay(time.Now())
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
