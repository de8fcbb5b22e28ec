package dictionary

import (
	"slices"
	"time"
)

// PeriodUpdate re-bounds one surviving period.
type PeriodUpdate struct {
	PeriodID int64
	Start    time.Time
	Finish   time.Time
}

// ChangeSet is the storage plan produced by one timeline edit: periods to
// delete, boundary updates for the surviving neighbors, and the periods to
// insert. Inserted periods carry no ID; the store assigns one.
type ChangeSet struct {
	DeleteIDs []int64
	Updates   []PeriodUpdate
	Inserts   []Period
}

// Timeline is the value object owning the period set of one
// (position, attribute) pair. It is the only place that mutates periods,
// which keeps the non-overlap / no-adjacent-duplicate invariant in one spot.
type Timeline struct {
	periods []Period
}

// NewTimeline builds a Timeline from the stored periods of one
// (position, attribute) pair, ordered by start date.
func NewTimeline(periods []Period) Timeline {
	owned := slices.Clone(periods)
	slices.SortFunc(owned, func(a, b Period) int {
		return a.Interval.Start.Compare(b.Interval.Start)
	})

	return Timeline{periods: owned}
}

// Periods returns the period set ordered by start date.
func (tl Timeline) Periods() []Period {
	return slices.Clone(tl.periods)
}

// Edit plans the placement of a new value period over the timeline:
//
//  1. Every period fully contained in the window (boundaries inclusive) is deleted.
//  2. The period straddling the window's finish is shifted to start one day
//     after the window, or merged into the new period when it carries the same value.
//  3. The period straddling the window's start is shrunk to finish one day
//     before the window, or merged likewise.
//  4. One period covering the (possibly widened) window is inserted.
//
// When a single period strictly contains the window and carries a different
// value, it is split: its head is kept by shrinking, its tail is re-inserted
// after the window. A neighbor exactly adjacent to the window is absorbed when
// it carries the same value, so adjacent duplicates never survive an edit.
// Absent neighbors are ordinary control flow.
func (tl Timeline) Edit(window Interval, value *string) ChangeSet {
	var cs ChangeSet

	remaining := make([]Period, 0, len(tl.periods))

	for _, p := range tl.periods {
		nested := !p.Interval.Start.Before(window.Start) && !p.Interval.Finish.After(window.Finish)
		if nested {
			cs.DeleteIDs = append(cs.DeleteIDs, p.ID)
			continue
		}

		remaining = append(remaining, p)
	}

	finalStart := window.Start
	finalFinish := window.Finish

	// After the nested pass, at most one period can straddle or touch each
	// boundary (a straddler and an adjacent neighbor on the same side would
	// overlap each other).
	var next, prev, adjacentNext, adjacentPrev *Period

	for i := range remaining {
		p := &remaining[i]

		if !p.Interval.Start.After(window.Finish) && p.Interval.Finish.After(window.Finish) {
			next = p
		}

		if p.Interval.Start.Before(window.Start) && !p.Interval.Finish.Before(window.Start) {
			prev = p
		}

		if p.Interval.Start.Equal(NextDay(window.Finish)) {
			adjacentNext = p
		}

		if p.Interval.Finish.Equal(PrevDay(window.Start)) {
			adjacentPrev = p
		}
	}

	switch {
	case next != nil && prev != nil && next.ID == prev.ID:
		// One period strictly contains the window.
		if next.SameValue(value) {
			cs.DeleteIDs = append(cs.DeleteIDs, next.ID)
			finalStart = next.Interval.Start
			finalFinish = next.Interval.Finish

			break
		}

		cs.Updates = append(cs.Updates, PeriodUpdate{
			PeriodID: next.ID,
			Start:    next.Interval.Start,
			Finish:   PrevDay(window.Start),
		})

		cs.Inserts = append(cs.Inserts, Period{
			Interval: Interval{Start: NextDay(window.Finish), Finish: next.Interval.Finish},
			Value:    next.Value,
		})

	default:
		switch {
		case next != nil && next.SameValue(value):
			cs.DeleteIDs = append(cs.DeleteIDs, next.ID)
			finalFinish = next.Interval.Finish
		case next != nil:
			cs.Updates = append(cs.Updates, PeriodUpdate{
				PeriodID: next.ID,
				Start:    NextDay(window.Finish),
				Finish:   next.Interval.Finish,
			})
		case adjacentNext != nil && adjacentNext.SameValue(value):
			cs.DeleteIDs = append(cs.DeleteIDs, adjacentNext.ID)
			finalFinish = adjacentNext.Interval.Finish
		}

		switch {
		case prev != nil && prev.SameValue(value):
			cs.DeleteIDs = append(cs.DeleteIDs, prev.ID)
			finalStart = prev.Interval.Start
		case prev != nil:
			cs.Updates = append(cs.Updates, PeriodUpdate{
				PeriodID: prev.ID,
				Start:    prev.Interval.Start,
				Finish:   PrevDay(window.Start),
			})
		case adjacentPrev != nil && adjacentPrev.SameValue(value):
			cs.DeleteIDs = append(cs.DeleteIDs, adjacentPrev.ID)
			finalStart = adjacentPrev.Interval.Start
		}
	}

	cs.Inserts = append(cs.Inserts, Period{
		Interval: Interval{Start: finalStart, Finish: finalFinish},
		Value:    value,
	})

	return cs
}

// Apply returns the Timeline with a ChangeSet applied in memory, assigning
// fresh IDs to inserted periods. The engine persists change sets through the
// store instead; Apply exists for in-memory composition and tests.
func (tl Timeline) Apply(cs ChangeSet) Timeline {
	nextID := int64(1)
	for _, p := range tl.periods {
		if p.ID >= nextID {
			nextID = p.ID + 1
		}
	}

	out := make([]Period, 0, len(tl.periods)+len(cs.Inserts))

	for _, p := range tl.periods {
		if slices.Contains(cs.DeleteIDs, p.ID) {
			continue
		}

		for _, u := range cs.Updates {
			if u.PeriodID == p.ID {
				p.Interval = Interval{Start: u.Start, Finish: u.Finish}
			}
		}

		out = append(out, p)
	}

	for _, p := range cs.Inserts {
		p.ID = nextID
		nextID++
		out = append(out, p)
	}

	return NewTimeline(out)
}
