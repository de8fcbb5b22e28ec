package dictionary

import (
	"errors"
	"time"
)

// ErrStartAfterFinish is returned when a period's start date lies after its finish date.
var ErrStartAfterFinish = errors.New("start date must not be after finish date")

// DateLayout is the wire format for the START_DATE / FINISH_DATE pseudo-attributes.
const DateLayout = "2006-01-02"

// Interval is a closed validity window [Start, Finish] with day granularity.
// Both bounds are normalized to midnight UTC.
type Interval struct {
	Start  time.Time
	Finish time.Time
}

// Day truncates a timestamp to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewInterval builds a day-granular Interval and validates its bounds.
func NewInterval(start time.Time, finish time.Time) (Interval, error) {
	iv := Interval{Start: Day(start), Finish: Day(finish)}

	if iv.Start.After(iv.Finish) {
		return Interval{}, errors.Join(ErrValidation, ErrStartAfterFinish)
	}

	return iv, nil
}

// Contains reports whether the day of d falls inside the closed window.
func (iv Interval) Contains(d time.Time) bool {
	day := Day(d)
	return !day.Before(iv.Start) && !day.After(iv.Finish)
}

// OverlapsStrictly applies the strict overlap test used for hierarchy
// derivation: Start < other.Finish AND Finish > other.Start.
// Touching endpoints do not count as overlap.
func (iv Interval) OverlapsStrictly(other Interval) bool {
	return iv.Start.Before(other.Finish) && iv.Finish.After(other.Start)
}

// Intersect returns the overlapping part of two windows: [max(starts), min(finishes)].
// Only meaningful when the windows overlap.
func (iv Interval) Intersect(other Interval) Interval {
	out := iv

	if other.Start.After(out.Start) {
		out.Start = other.Start
	}

	if other.Finish.Before(out.Finish) {
		out.Finish = other.Finish
	}

	return out
}

// NextDay returns the day immediately after d.
func NextDay(d time.Time) time.Time {
	return Day(d).AddDate(0, 0, 1)
}

// PrevDay returns the day immediately before d.
func PrevDay(d time.Time) time.Time {
	return Day(d).AddDate(0, 0, -1)
}
