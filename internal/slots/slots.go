package slots

import (
	"errors"
	"fmt"
	"time"

	"barbershop-backend/internal/models"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	firstHour = 9
	lastHour  = 21
)

// TotalPerDay is the number of bookable labels in a day.
const TotalPerDay = lastHour - firstHour + 1

type DayStatus string

const (
	DayAvailable DayStatus = "available"
	DayPartial   DayStatus = "partial"
	DayFull      DayStatus = "full"
)

var ErrInvalidDate = errors.New("invalid date format")

var labels = buildLabels()

func buildLabels() []string {
	out := make([]string, 0, TotalPerDay)
	for h := firstHour; h <= lastHour; h++ {
		out = append(out, clockLabel(h))
	}
	return out
}

func clockLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

// Labels returns a copy of the daily slot labels in chronological order.
func Labels() []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

func IsLabel(value string) bool {
	return labelIndex(value) >= 0
}

func labelIndex(value string) int {
	for i, l := range labels {
		if l == value {
			return i
		}
	}
	return -1
}

type Day struct {
	Date       string    `json:"date"`
	Occupied   []string  `json:"occupied"`
	Available  int       `json:"available"`
	Status     DayStatus `json:"status"`
	Past       bool      `json:"past"`
	Selectable bool      `json:"selectable"`
}

// OccupiedSlots returns the labels taken on date by bookings that are not
// rejected, in slot order and without duplicates.
func OccupiedSlots(date string, bookings []models.Booking) []string {
	taken := make([]bool, len(labels))
	for _, b := range bookings {
		if b.Date != date || !b.Status.Occupies() {
			continue
		}
		if idx := labelIndex(b.Time); idx >= 0 {
			taken[idx] = true
		}
	}
	out := make([]string, 0)
	for i, ok := range taken {
		if ok {
			out = append(out, labels[i])
		}
	}
	return out
}

func Classify(occupiedCount int) DayStatus {
	switch {
	case occupiedCount >= TotalPerDay:
		return DayFull
	case occupiedCount == 0:
		return DayAvailable
	default:
		return DayPartial
	}
}

// Calculate classifies a single day. It does not know about the clock, so
// Past and Selectable only reflect occupancy; use CalculateAt for those.
func Calculate(date string, bookings []models.Booking) Day {
	occupied := OccupiedSlots(date, bookings)
	available := TotalPerDay - len(occupied)
	if available < 0 {
		available = 0
	}
	status := Classify(len(occupied))
	return Day{
		Date:       date,
		Occupied:   occupied,
		Available:  available,
		Status:     status,
		Selectable: status != DayFull,
	}
}

func CalculateAt(date string, bookings []models.Booking, now time.Time, loc *time.Location) (Day, error) {
	past, err := IsDatePast(date, loc, now)
	if err != nil {
		return Day{}, err
	}
	day := Calculate(date, bookings)
	day.Past = past
	day.Selectable = !past && day.Status != DayFull
	return day, nil
}

// Month returns one Day per calendar day of the given month.
func Month(year int, month time.Month, bookings []models.Booking, now time.Time, loc *time.Location) []Day {
	byDate := make(map[string][]models.Booking)
	for _, b := range bookings {
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := make([]Day, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		date := d.Format(DateLayout)
		day, err := CalculateAt(date, byDate[date], now, loc)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	return days
}

// MonthRange returns the first and last date of the month as YYYY-MM-DD.
func MonthRange(value string, loc *time.Location) (time.Time, string, string, error) {
	first, err := time.ParseInLocation(MonthLayout, value, loc)
	if err != nil {
		return time.Time{}, "", "", ErrInvalidDate
	}
	last := first.AddDate(0, 1, -1)
	return first, first.Format(DateLayout), last.Format(DateLayout), nil
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	local := now.In(loc)
	startToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return date.Before(startToday), nil
}

// IsFree reports whether label on date is not held by any booking.
func IsFree(date, label string, bookings []models.Booking) bool {
	for _, taken := range OccupiedSlots(date, bookings) {
		if taken == label {
			return false
		}
	}
	return true
}
