package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesWeekly(t *testing.T) {
	dates, err := SeriesDates("2025-01-06", Weekly, 4, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}, dates)
}

func TestSeriesBiweekly(t *testing.T) {
	dates, err := SeriesDates("2025-12-22", Biweekly, 3, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-22", "2026-01-05", "2026-01-19"}, dates)
}

func TestSeriesMonthlyMonthEndOverflow(t *testing.T) {
	// Jan 31 + 1 month normalises to Mar 3; the next step starts from Mar 3.
	dates, err := SeriesDates("2025-01-31", Monthly, 3, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-31", "2025-03-03", "2025-04-03"}, dates)
}

func TestSeriesMonthlyLeapYear(t *testing.T) {
	dates, err := SeriesDates("2024-01-30", Monthly, 2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-30", "2024-03-01"}, dates)
}

func TestSeriesFirstElementIsStart(t *testing.T) {
	start := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	dates, err := Series(start, Weekly, MaxCount)
	require.NoError(t, err)
	require.Len(t, dates, MaxCount)
	assert.True(t, dates[0].Equal(start))
	assert.True(t, dates[MaxCount-1].Equal(start.AddDate(0, 0, 7*(MaxCount-1))))
}

func TestSeriesRejectsBadInput(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	_, err := Series(start, Cadence("daily"), 4)
	assert.ErrorIs(t, err, ErrInvalidCadence)

	_, err = Series(start, Weekly, 1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Series(start, Weekly, 13)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = SeriesDates("06-01-2025", Weekly, 2, time.UTC)
	assert.Error(t, err)
}
