package week

import (
	"testing"
	"time"
)

func mondayAnchor(t *testing.T) Anchor {
	t.Helper()
	a, err := NewAnchor(time.Monday, 7, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("NewAnchor: %v", err)
	}
	return a
}

func TestStartMidWeek(t *testing.T) {
	a := mondayAnchor(t)

	// 2026-01-18 00:00 UTC is Sunday 09:00 JST; the bucket started the
	// previous Monday 07:00 JST.
	in := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	start := a.Start(in).In(a.Location)

	if start.Year() != 2026 || start.Month() != time.January || start.Day() != 12 {
		t.Fatalf("Start date = %v, want 2026-01-12", start)
	}
	if start.Hour() != 7 || start.Minute() != 0 {
		t.Fatalf("Start time = %v, want 07:00", start)
	}
	if start.Weekday() != time.Monday {
		t.Fatalf("Start weekday = %v, want Monday", start.Weekday())
	}
}

func TestStartBeforeAnchorHourRollsBack(t *testing.T) {
	a := mondayAnchor(t)

	// Monday 06:59 JST belongs to the week that started 7 days earlier.
	in := time.Date(2026, 1, 12, 6, 59, 0, 0, a.Location)
	start := a.Start(in).In(a.Location)
	if start.Day() != 5 || start.Hour() != 7 {
		t.Fatalf("Start = %v, want 2026-01-05 07:00 JST", start)
	}

	// One minute later the new week has begun.
	in = time.Date(2026, 1, 12, 7, 0, 0, 0, a.Location)
	start = a.Start(in).In(a.Location)
	if start.Day() != 12 {
		t.Fatalf("Start = %v, want 2026-01-12 07:00 JST", start)
	}
}

func TestStartIsStableAcrossTheWeek(t *testing.T) {
	a := mondayAnchor(t)

	base := time.Date(2026, 1, 12, 7, 0, 0, 0, a.Location)
	want := a.Start(base)
	for hours := 0; hours < 7*24; hours++ {
		in := base.Add(time.Duration(hours) * time.Hour)
		if got := a.Start(in); !got.Equal(want) {
			t.Fatalf("Start(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNext(t *testing.T) {
	a := mondayAnchor(t)

	in := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	next := a.Next(in).In(a.Location)
	if next.Day() != 19 || next.Hour() != 7 || next.Weekday() != time.Monday {
		t.Fatalf("Next = %v, want Monday 2026-01-19 07:00 JST", next)
	}
	if !a.Next(in).After(a.Start(in)) {
		t.Fatalf("Next must be after Start")
	}
}
