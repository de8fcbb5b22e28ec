package dictionary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func period(t *testing.T, id int64, start time.Time, finish time.Time, value *string) dictionary.Period {
	t.Helper()

	iv, err := dictionary.NewInterval(start, finish)
	require.NoError(t, err)

	return dictionary.Period{ID: id, Interval: iv, Value: value}
}

func window(t *testing.T, start time.Time, finish time.Time) dictionary.Interval {
	t.Helper()

	iv, err := dictionary.NewInterval(start, finish)
	require.NoError(t, err)

	return iv
}

type expectedPeriod struct {
	start  time.Time
	finish time.Time
	value  *string
}

func assertPeriods(t *testing.T, tl dictionary.Timeline, expected []expectedPeriod) {
	t.Helper()

	periods := tl.Periods()
	require.Len(t, periods, len(expected))

	for i, want := range expected {
		assert.True(t, want.start.Equal(periods[i].Interval.Start),
			"period %d start: want %s, got %s", i, want.start, periods[i].Interval.Start)
		assert.True(t, want.finish.Equal(periods[i].Interval.Finish),
			"period %d finish: want %s, got %s", i, want.finish, periods[i].Interval.Finish)
		assert.True(t, periods[i].SameValue(want.value),
			"period %d value mismatch", i)
	}
}

func assertGapless(t *testing.T, tl dictionary.Timeline) {
	t.Helper()

	periods := tl.Periods()

	for i := 1; i < len(periods); i++ {
		prevFinish := periods[i-1].Interval.Finish
		start := periods[i].Interval.Start

		assert.True(t, dictionary.NextDay(prevFinish).Equal(start),
			"gap or overlap between period %d and %d: %s .. %s", i-1, i, prevFinish, start)
	}
}

//nolint:funlen
func Test_Timeline_Edit(t *testing.T) {
	tests := []struct {
		name     string
		initial  func(t *testing.T) []dictionary.Period
		window   func(t *testing.T) dictionary.Interval
		value    *string
		expected func(t *testing.T) []expectedPeriod
	}{
		{
			name: "empty_timeline_gets_single_period",
			initial: func(t *testing.T) []dictionary.Period {
				return nil
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 1, 1), day(2024, 12, 31))
			},
			value: strPtr("A"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "containing_period_with_different_value_is_split",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 4, 1), day(2024, 6, 30))
			},
			value: strPtr("B"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 3, 31), strPtr("A")},
					{day(2024, 4, 1), day(2024, 6, 30), strPtr("B")},
					{day(2024, 7, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "containing_period_with_same_value_is_absorbed",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 4, 1), day(2024, 6, 30))
			},
			value: strPtr("A"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "nested_periods_are_replaced",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 1, 31), strPtr("A")),
					period(t, 2, day(2024, 2, 1), day(2024, 2, 29), strPtr("B")),
					period(t, 3, day(2024, 3, 1), day(2024, 3, 31), strPtr("C")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 1, 1), day(2024, 3, 31))
			},
			value: strPtr("D"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 3, 31), strPtr("D")},
				}
			},
		},
		{
			name: "straddling_successor_is_shifted_forward",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 3, 1), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 1, 1), day(2024, 5, 31))
			},
			value: strPtr("B"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 5, 31), strPtr("B")},
					{day(2024, 6, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "straddling_successor_with_same_value_merges",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 3, 1), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 1, 1), day(2024, 5, 31))
			},
			value: strPtr("A"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "straddling_predecessor_is_shrunk",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 8, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 5, 1), day(2024, 12, 31))
			},
			value: strPtr("B"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 4, 30), strPtr("A")},
					{day(2024, 5, 1), day(2024, 12, 31), strPtr("B")},
				}
			},
		},
		{
			name: "straddling_predecessor_with_same_value_merges",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 8, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 5, 1), day(2024, 12, 31))
			},
			value: strPtr("A"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "edit_across_both_boundaries_keeps_heads_and_tails",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 3, 31), strPtr("A")),
					period(t, 2, day(2024, 4, 1), day(2024, 6, 30), strPtr("B")),
					period(t, 3, day(2024, 7, 1), day(2024, 12, 31), strPtr("C")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 3, 1), day(2024, 8, 31))
			},
			value: strPtr("X"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 2, 29), strPtr("A")},
					{day(2024, 3, 1), day(2024, 8, 31), strPtr("X")},
					{day(2024, 9, 1), day(2024, 12, 31), strPtr("C")},
				}
			},
		},
		{
			name: "adjacent_same_value_neighbors_are_absorbed",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 2, 14), strPtr("A")),
					period(t, 2, day(2024, 2, 15), day(2024, 4, 15), strPtr("C")),
					period(t, 3, day(2024, 4, 16), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 2, 15), day(2024, 4, 15))
			},
			value: strPtr("A"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "adjacent_different_value_neighbors_are_untouched",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 2, 14), strPtr("A")),
					period(t, 2, day(2024, 4, 16), day(2024, 12, 31), strPtr("B")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 2, 15), day(2024, 4, 15))
			},
			value: strPtr("C"),
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 2, 14), strPtr("A")},
					{day(2024, 2, 15), day(2024, 4, 15), strPtr("C")},
					{day(2024, 4, 16), day(2024, 12, 31), strPtr("B")},
				}
			},
		},
		{
			name: "null_value_edit_splits_like_any_other_value",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 12, 31), strPtr("A")),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 6, 1), day(2024, 6, 30))
			},
			value: nil,
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 5, 31), strPtr("A")},
					{day(2024, 6, 1), day(2024, 6, 30), nil},
					{day(2024, 7, 1), day(2024, 12, 31), strPtr("A")},
				}
			},
		},
		{
			name: "null_periods_with_same_null_merge",
			initial: func(t *testing.T) []dictionary.Period {
				return []dictionary.Period{
					period(t, 1, day(2024, 1, 1), day(2024, 6, 30), nil),
				}
			},
			window: func(t *testing.T) dictionary.Interval {
				return window(t, day(2024, 4, 1), day(2024, 12, 31))
			},
			value: nil,
			expected: func(t *testing.T) []expectedPeriod {
				return []expectedPeriod{
					{day(2024, 1, 1), day(2024, 12, 31), nil},
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tl := dictionary.NewTimeline(tc.initial(t))
			edited := tl.Apply(tl.Edit(tc.window(t), tc.value))

			assertPeriods(t, edited, tc.expected(t))
			assertGapless(t, edited)
		})
	}
}

func Test_Timeline_Edit_IsIdempotent(t *testing.T) {
	initial := []dictionary.Period{
		period(t, 1, day(2024, 1, 1), day(2024, 12, 31), strPtr("A")),
	}
	editWindow := window(t, day(2024, 4, 1), day(2024, 6, 30))

	once := dictionary.NewTimeline(initial)
	once = once.Apply(once.Edit(editWindow, strPtr("B")))

	twice := once.Apply(once.Edit(editWindow, strPtr("B")))

	assertPeriods(t, twice, []expectedPeriod{
		{day(2024, 1, 1), day(2024, 3, 31), strPtr("A")},
		{day(2024, 4, 1), day(2024, 6, 30), strPtr("B")},
		{day(2024, 7, 1), day(2024, 12, 31), strPtr("A")},
	})
	assertGapless(t, twice)
}

func Test_Timeline_Edit_SequenceKeepsInvariants(t *testing.T) {
	tl := dictionary.NewTimeline(nil)

	edits := []struct {
		start, finish time.Time
		value         *string
	}{
		{day(2024, 1, 1), day(2024, 12, 31), strPtr("A")},
		{day(2024, 3, 1), day(2024, 3, 31), strPtr("B")},
		{day(2024, 2, 15), day(2024, 4, 15), strPtr("C")},
		{day(2024, 2, 15), day(2024, 4, 15), strPtr("A")},
		{day(2023, 11, 1), day(2024, 1, 31), nil},
	}

	for _, e := range edits {
		tl = tl.Apply(tl.Edit(window(t, e.start, e.finish), e.value))
		assertGapless(t, tl)
	}

	assertPeriods(t, tl, []expectedPeriod{
		{day(2023, 11, 1), day(2024, 1, 31), nil},
		{day(2024, 2, 1), day(2024, 12, 31), strPtr("A")},
	})
}
