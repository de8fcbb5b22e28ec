package dictionary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

func Test_NewInterval_RejectsStartAfterFinish(t *testing.T) {
	_, err := dictionary.NewInterval(day(2024, 6, 1), day(2024, 1, 1))

	require.Error(t, err)
	assert.ErrorIs(t, err, dictionary.ErrValidation)
	assert.ErrorIs(t, err, dictionary.ErrStartAfterFinish)
}

func Test_NewInterval_AllowsSingleDay(t *testing.T) {
	iv, err := dictionary.NewInterval(day(2024, 6, 1), day(2024, 6, 1))

	require.NoError(t, err)
	assert.True(t, iv.Start.Equal(iv.Finish))
}

func Test_NewInterval_NormalizesToMidnightUTC(t *testing.T) {
	messy := time.Date(2024, 6, 1, 15, 42, 7, 123, time.FixedZone("X", 3600))

	iv, err := dictionary.NewInterval(messy, messy)

	require.NoError(t, err)
	assert.Equal(t, 0, iv.Start.Hour())
	assert.Equal(t, time.UTC, iv.Start.Location())
}

func Test_Interval_Contains(t *testing.T) {
	iv := window(t, day(2024, 1, 1), day(2024, 12, 31))

	assert.True(t, iv.Contains(day(2024, 1, 1)))
	assert.True(t, iv.Contains(day(2024, 6, 15)))
	assert.True(t, iv.Contains(day(2024, 12, 31)))
	assert.False(t, iv.Contains(day(2023, 12, 31)))
	assert.False(t, iv.Contains(day(2025, 1, 1)))
}

func Test_Interval_OverlapsStrictly(t *testing.T) {
	base := window(t, day(2024, 1, 1), day(2024, 6, 30))

	assert.True(t, base.OverlapsStrictly(window(t, day(2024, 6, 1), day(2024, 12, 31))))
	assert.False(t, base.OverlapsStrictly(window(t, day(2024, 6, 30), day(2024, 12, 31))),
		"touching endpoints must not overlap")
	assert.False(t, base.OverlapsStrictly(window(t, day(2024, 7, 1), day(2024, 12, 31))))
}

func Test_Interval_Intersect(t *testing.T) {
	a := window(t, day(2024, 1, 1), day(2024, 8, 31))
	b := window(t, day(2024, 6, 1), day(2024, 12, 31))

	got := a.Intersect(b)

	assert.True(t, day(2024, 6, 1).Equal(got.Start))
	assert.True(t, day(2024, 8, 31).Equal(got.Finish))
}

func Test_DayStepping(t *testing.T) {
	assert.True(t, day(2024, 3, 1).Equal(dictionary.NextDay(day(2024, 2, 29))))
	assert.True(t, day(2024, 2, 29).Equal(dictionary.PrevDay(day(2024, 3, 1))))
	assert.True(t, day(2025, 1, 1).Equal(dictionary.NextDay(day(2024, 12, 31))))
}
