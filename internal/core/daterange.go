package core

import (
	"fmt"
	"time"
)

// RangeKind enumerates the selectable reporting windows.
type RangeKind int

const (
	RangePastMonth RangeKind = iota
	RangePast6Months
	RangePast12Months
	RangeYearToDate
	RangeAll
)

// ParseRangeKind converts a configuration tag to a RangeKind.
func ParseRangeKind(s string) (RangeKind, error) {
	switch s {
	case "past_month":
		return RangePastMonth, nil
	case "past_6_months":
		return RangePast6Months, nil
	case "past_12_months":
		return RangePast12Months, nil
	case "year_to_date":
		return RangeYearToDate, nil
	case "all":
		return RangeAll, nil
	}
	return RangePastMonth, fmt.Errorf("unknown date range %q", s)
}

func (k RangeKind) String() string {
	switch k {
	case RangePastMonth:
		return "past_month"
	case RangePast6Months:
		return "past_6_months"
	case RangePast12Months:
		return "past_12_months"
	case RangeYearToDate:
		return "year_to_date"
	case RangeAll:
		return "all"
	}
	return "unknown"
}

// DateRange is a resolved reporting window. End is midnight on the first day
// of the month after now, so the current month is always in range.
type DateRange struct {
	Kind  RangeKind
	Start time.Time
	End   time.Time
}

// NewDateRange resolves a range kind against a reference instant, anchoring
// both ends to month starts in the instant's location. The all-data variant
// is capped at two years back; plots get unreadable beyond that, and the
// aggregator clips it further to the earliest data month.
func NewDateRange(kind RangeKind, now time.Time) DateRange {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var start time.Time
	switch kind {
	case RangePastMonth:
		start = monthStart
	case RangePast6Months:
		start = monthStart.AddDate(0, -5, 0)
	case RangePast12Months:
		start = monthStart.AddDate(0, -11, 0)
	case RangeYearToDate:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case RangeAll:
		start = monthStart.AddDate(0, -23, 0)
	default:
		start = monthStart
	}

	return DateRange{
		Kind:  kind,
		Start: start,
		End:   monthStart.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside the range. Both bounds are
// inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !(t.Before(r.Start) || t.After(r.End))
}
