package ledger

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

// Period is a half-open date range [Start, End).
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Range returns the period [start, end). Both dates are truncated to midnight UTC.
func Range(start, end time.Time) Period {
	return Period{Start: day(start), End: day(end)}
}

// Year returns the calendar year y.
func Year(y int) Period {
	return Period{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Month returns calendar month m of year y.
func Month(y int, m time.Month) Period {
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// FiscalYear returns the twelve months starting on month/day of year y.
func FiscalYear(y int, month time.Month, d int) Period {
	start := time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(1, 0, 0)}
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Split divides the period at t into [Start, t) and [t, End).
// t is clamped to the period bounds.
func (p Period) Split(t time.Time) (Period, Period) {
	t = day(t)
	if t.Before(p.Start) {
		t = p.Start
	}
	if t.After(p.End) {
		t = p.End
	}
	return Period{Start: p.Start, End: t}, Period{Start: t, End: p.End}
}

// Months returns the first day of every month the period touches.
func (p Period) Months() []time.Time {
	var months []time.Time
	m := time.Date(p.Start.Year(), p.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m.Before(p.End) {
		months = append(months, m)
		m = m.AddDate(0, 1, 0)
	}
	return months
}

func (p Period) String() string {
	// End is exclusive; print the last included day.
	return fmt.Sprintf("%s..%s", p.Start.Format(dateFormat), p.End.AddDate(0, 0, -1).Format(dateFormat))
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
