package slots

import (
	"testing"
	"time"

	"barbershop-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	return loc
}

func booking(date, label string, status models.Status) models.Booking {
	return models.Booking{Date: date, Time: label, Status: status}
}

func TestLabels(t *testing.T) {
	l := Labels()
	require.Len(t, l, 13)
	assert.Equal(t, "9:00 AM", l[0])
	assert.Equal(t, "12:00 PM", l[3])
	assert.Equal(t, "9:00 PM", l[12])

	l[0] = "mutated"
	assert.True(t, IsLabel("9:00 AM"))
	assert.False(t, IsLabel("9:30 AM"))
}

func TestRejectedBookingsDoNotOccupy(t *testing.T) {
	bookings := []models.Booking{
		booking("2025-01-06", "9:00 AM", models.StatusRejected),
		booking("2025-01-06", "9:00 AM", models.StatusRejected),
	}
	day := Calculate("2025-01-06", bookings)
	assert.Empty(t, day.Occupied)
	assert.Equal(t, 13, day.Available)
	assert.Equal(t, DayAvailable, day.Status)
	assert.True(t, IsFree("2025-01-06", "9:00 AM", bookings))
}

func TestOccupiedCountsPendingApprovedCompleted(t *testing.T) {
	bookings := []models.Booking{
		booking("2025-01-06", "1:00 PM", models.StatusCompleted),
		booking("2025-01-06", "9:00 AM", models.StatusPending),
		booking("2025-01-06", "9:00 AM", models.StatusApproved),
		booking("2025-01-06", "10:00 AM", models.StatusRejected),
		booking("2025-01-07", "11:00 AM", models.StatusPending),
	}
	occupied := OccupiedSlots("2025-01-06", bookings)
	assert.Equal(t, []string{"9:00 AM", "1:00 PM"}, occupied)

	day := Calculate("2025-01-06", bookings)
	assert.Equal(t, 11, day.Available)
	assert.Equal(t, DayPartial, day.Status)
	assert.True(t, day.Selectable)
}

func TestFullDayIsNotSelectable(t *testing.T) {
	bookings := make([]models.Booking, 0, TotalPerDay)
	for _, l := range Labels() {
		bookings = append(bookings, booking("2025-01-06", l, models.StatusApproved))
	}
	day := Calculate("2025-01-06", bookings)
	assert.Equal(t, DayFull, day.Status)
	assert.Equal(t, 0, day.Available)
	assert.False(t, day.Selectable)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, DayAvailable, Classify(0))
	assert.Equal(t, DayPartial, Classify(12))
	assert.Equal(t, DayFull, Classify(13))
	assert.Equal(t, DayFull, Classify(14))
}

func TestCalculateAtPastDate(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, loc)

	day, err := CalculateAt("2025-01-09", nil, now, loc)
	require.NoError(t, err)
	assert.True(t, day.Past)
	assert.False(t, day.Selectable)
	assert.Equal(t, DayAvailable, day.Status)

	day, err = CalculateAt("2025-01-10", nil, now, loc)
	require.NoError(t, err)
	assert.False(t, day.Past)
	assert.True(t, day.Selectable)

	_, err = CalculateAt("10/01/2025", nil, now, loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMonth(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2025, 2, 10, 8, 0, 0, 0, loc)
	bookings := []models.Booking{
		booking("2025-02-14", "9:00 AM", models.StatusPending),
		booking("2025-02-14", "9:00 PM", models.StatusRejected),
	}

	days := Month(2025, time.February, bookings, now, loc)
	require.Len(t, days, 28)
	assert.Equal(t, "2025-02-01", days[0].Date)
	assert.True(t, days[0].Past)
	assert.Equal(t, "2025-02-14", days[13].Date)
	assert.Equal(t, DayPartial, days[13].Status)
	assert.Equal(t, 12, days[13].Available)
	assert.True(t, days[13].Selectable)
}

func TestMonthRange(t *testing.T) {
	loc := mustLoadLoc(t)
	_, from, to, err := MonthRange("2024-02", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)

	_, _, _, err = MonthRange("2024-2", loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
