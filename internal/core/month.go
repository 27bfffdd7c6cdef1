package core

import (
	"fmt"
	"time"
)

// Month is a calendar month in a specific year. It is comparable, so it can
// key maps directly.
type Month struct {
	Year int
	M    time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), M: t.Month()}
}

func (m Month) Before(that Month) bool {
	if m.Year != that.Year {
		return m.Year < that.Year
	}
	return m.M < that.M
}

// Next returns the following month, rolling the year over after December.
func (m Month) Next() Month {
	if m.M == time.December {
		return Month{Year: m.Year + 1, M: time.January}
	}
	return Month{Year: m.Year, M: m.M + 1}
}

// Prev returns the preceding month, rolling the year back before January.
func (m Month) Prev() Month {
	if m.M == time.January {
		return Month{Year: m.Year - 1, M: time.December}
	}
	return Month{Year: m.Year, M: m.M - 1}
}

// AddMonths returns the month n months away; n may be negative.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.M, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

// Start returns midnight on the first day of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.M, 1, 0, 0, 0, 0, loc)
}

// Label returns the short month name, e.g. "Jan".
func (m Month) Label() string {
	return m.M.String()[:3]
}

// LongLabel returns the month with its year, e.g. "Jan 2014".
func (m Month) LongLabel() string {
	return fmt.Sprintf("%s %d", m.Label(), m.Year)
}

func (m Month) String() string {
	return m.Label()
}
