package date

import (
	"fmt"
	"time"
)

// MonthFormat is the external representation of a month, "MM-YYYY".
const MonthFormat = "01-2006"

// Month identifies a calendar month, the bucket used by reports and forecasts.
type Month struct {
	y int
	m time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month { return Month{d.y, d.m} }

// NewMonth returns a normalized Month.
func NewMonth(year int, month time.Month) Month {
	d := New(year, month, 1)
	return Month{d.y, d.m}
}

// ParseMonth parses a month in the "MM-YYYY" form used across the application.
func ParseMonth(str string) (Month, error) {
	t, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, "MM-YYYY", err)
	}
	return Month{t.Year(), t.Month()}, nil
}

// Year returns the year of the month.
func (m Month) Year() int { return m.y }

// Month returns the time.Month of the month.
func (m Month) Month() time.Month { return m.m }

// Add returns the month n calendar months later (or earlier for negative n).
func (m Month) Add(n int) Month {
	d := New(m.y, m.m+time.Month(n), 1)
	return Month{d.y, d.m}
}

// Next returns the following month.
func (m Month) Next() Month { return m.Add(1) }

// Prev returns the preceding month.
func (m Month) Prev() Month { return m.Add(-1) }

// Before reports whether m is before x.
func (m Month) Before(x Month) bool { return m.y < x.y || (m.y == x.y && m.m < x.m) }

// Range returns the full range of days in the month.
func (m Month) Range() Range {
	from := New(m.y, m.m, 1)
	return Range{From: from, To: New(m.y, m.m, daysIn(m.y, m.m))}
}

// Contains reports whether d falls within the month.
func (m Month) Contains(d Date) bool { return d.y == m.y && d.m == m.m }

// String formats the month in the "MM-YYYY" form.
func (m Month) String() string {
	return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC).Format(MonthFormat)
}

// Label formats the month for display, e.g. "Jan 2025".
func (m Month) Label() string {
	return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains returns true when the date is included in the range (boundaries included).
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }
