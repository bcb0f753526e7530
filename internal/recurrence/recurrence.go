package recurrence

import (
	"errors"
	"time"
)

type Cadence string

const (
	Weekly   Cadence = "weekly"
	Biweekly Cadence = "biweekly"
	Monthly  Cadence = "monthly"

	MinCount = 2
	MaxCount = 12
)

var (
	ErrInvalidCadence = errors.New("invalid cadence")
	ErrInvalidCount   = errors.New("invalid count")
)

func (c Cadence) Valid() bool {
	switch c {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

func (c Cadence) next(t time.Time) time.Time {
	switch c {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Biweekly:
		return t.AddDate(0, 0, 14)
	default:
		// AddDate normalises overflow: Jan 31 + 1 month is Mar 3 (Feb 28 + 3).
		return t.AddDate(0, 1, 0)
	}
}

// Series returns n dates starting at start. Each step is applied to the
// previous element, so monthly overflow compounds from the shifted date.
func Series(start time.Time, cadence Cadence, n int) ([]time.Time, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}
	if n < MinCount || n > MaxCount {
		return nil, ErrInvalidCount
	}

	out := make([]time.Time, 0, n)
	current := start
	for i := 0; i < n; i++ {
		out = append(out, current)
		current = cadence.next(current)
	}
	return out, nil
}

// SeriesDates is Series over YYYY-MM-DD strings.
func SeriesDates(start string, cadence Cadence, n int, loc *time.Location) ([]string, error) {
	first, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return nil, err
	}
	dates, err := Series(first, cadence, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	return out, nil
}
