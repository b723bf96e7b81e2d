// Package week computes the fixed 7-day accumulation buckets that weekly
// scores are keyed by. A bucket starts at a configured weekday and hour in a
// configured timezone and instants are normalized back to UTC.
package week

import "time"

type Anchor struct {
	Weekday  time.Weekday
	Hour     int
	Location *time.Location
}

func NewAnchor(weekday time.Weekday, hour int, tz string) (Anchor, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Anchor{}, err
	}
	return Anchor{Weekday: weekday, Hour: hour, Location: loc}, nil
}

// Start floors t to the most recent occurrence of the anchor weekday and hour.
// When t falls on the anchor weekday but before the anchor hour, the bucket
// started a full week earlier.
func (a Anchor) Start(t time.Time) time.Time {
	local := t.In(a.Location)
	daysBack := (int(local.Weekday()) - int(a.Weekday) + 7) % 7
	day := local.AddDate(0, 0, -daysBack)
	start := time.Date(day.Year(), day.Month(), day.Day(), a.Hour, 0, 0, 0, a.Location)
	if local.Before(start) {
		start = start.AddDate(0, 0, -7)
	}
	return start.UTC()
}

// Next returns the start of the bucket following the one owning t.
func (a Anchor) Next(t time.Time) time.Time {
	return a.Start(t).In(a.Location).AddDate(0, 0, 7).UTC()
}
