package utils

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayAcceptedLayouts(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{
		"05.03.2024",
		"2024-03-05",
		"2024/03/05",
		"05/03/2024",
		"Mar 5, 2024",
		"March 5, 2024",
		"05-03-2024",
	} {
		got, err := ParseDay(input)
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDay(%q) = %v, want %v", input, got, want)
		}
	}
}

// Dotted dates are always day-first: the first layout that matches wins.
func TestParseDayDisambiguation(t *testing.T) {
	got, err := ParseDay("01.02.2024")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if got.Month() != time.February || got.Day() != 1 {
		t.Fatalf("ParseDay(01.02.2024) = %v, want February 1st", got)
	}
}

func TestParseDayTruncatesTime(t *testing.T) {
	got, err := ParseDay("2024-03-05T18:30:00Z")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestNormalizeDayRoundTrip(t *testing.T) {
	day, err := NormalizeDay("2024-03-05")
	if err != nil {
		t.Fatalf("NormalizeDay: %v", err)
	}
	if day != "05.03.2024" {
		t.Fatalf("NormalizeDay = %q, want 05.03.2024", day)
	}
	again, err := NormalizeDay(day)
	if err != nil {
		t.Fatalf("NormalizeDay canonical: %v", err)
	}
	if again != day {
		t.Fatalf("canonical form not stable: %q != %q", again, day)
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "yesterday", "32.01.2024", "2024-13-40"} {
		if _, err := ParseDay(input); !errors.Is(err, ErrUnparseableDate) {
			t.Fatalf("ParseDay(%q): expected ErrUnparseableDate, got %v", input, err)
		}
	}
}

func TestTodayIsCanonical(t *testing.T) {
	if _, err := ParseDay(Today()); err != nil {
		t.Fatalf("Today() not parseable: %v", err)
	}
}
