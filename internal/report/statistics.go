// Package report derives the per-month statistics view of a fuel log:
// distances, volumes, and costs bucketed by month over a date range, plus a
// mileage summary when the range spans more than one month.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/wdkapps/fillup/internal/core"
)

// MonthStat is one row of the statistics table.
type MonthStat struct {
	Month        core.Month
	Distance     int
	Volume       float32
	Cost         float64
	AveragePrice float64
}

// MileageSummary aggregates the closed mileage segments in range. Records
// flagged as hidden are left out.
type MileageSummary struct {
	Min     float32
	Average float32
	Max     float32
	Count   int
}

// Statistics is the full report for one vehicle over one date range.
type Statistics struct {
	Range  core.DateRange
	Units  core.UnitSystem
	Months []MonthStat

	TotalDistance int
	TotalVolume   float32
	TotalCost     float64

	AverageDistance float64
	AverageVolume   float64
	AverageCost     float64

	// CostPerDistance is total cost over total distance, zero when no
	// distance was covered.
	CostPerDistance float64

	// Summary is nil when the range covers a single month; a one-month
	// min/avg/max would just repeat that month's figure.
	Summary *MileageSummary
}

// Build computes statistics from a vehicle's records. The records must
// already carry mileage segments (see core.CalculateMileage).
func Build(records []*core.RefuelRecord, rng core.DateRange, units core.UnitSystem) *Statistics {
	stats := &Statistics{
		Range: rng,
		Units: units,
	}

	trips := core.NewMonthlyTrips(records)
	months := trips.Months(rng)

	for _, month := range months {
		trip := trips.TripsFor(month)
		stats.Months = append(stats.Months, MonthStat{
			Month:        month,
			Distance:     trip.Distance,
			Volume:       trip.Volume,
			Cost:         trip.Cost,
			AveragePrice: trip.AveragePrice(),
		})
		stats.TotalDistance += trip.Distance
		stats.TotalVolume += trip.Volume
		stats.TotalCost += trip.Cost
	}

	if n := len(months); n > 0 {
		stats.AverageDistance = float64(stats.TotalDistance) / float64(n)
		stats.AverageVolume = float64(stats.TotalVolume) / float64(n)
		stats.AverageCost = stats.TotalCost / float64(n)
	}
	if stats.TotalDistance > 0 {
		stats.CostPerDistance = stats.TotalCost / float64(stats.TotalDistance)
	}

	if len(months) > 1 {
		stats.Summary = summarizeMileage(records, rng)
	}

	return stats
}

// summarizeMileage walks the closed segments inside the range, skipping
// records whose calculation is hidden.
func summarizeMileage(records []*core.RefuelRecord, rng core.DateRange) *MileageSummary {
	var summary MileageSummary
	var total float32

	for _, r := range records {
		if r.Calc == nil || r.HideCalc || !rng.Contains(r.Time) {
			continue
		}
		m := r.Calc.Mileage()
		if summary.Count == 0 || m < summary.Min {
			summary.Min = m
		}
		if summary.Count == 0 || m > summary.Max {
			summary.Max = m
		}
		total += m
		summary.Count++
	}

	if summary.Count == 0 {
		return nil
	}
	summary.Average = total / float32(summary.Count)
	return &summary
}

// Render writes the report as a plain-text table, money formatted with the
// given currency.
func (s *Statistics) Render(currency core.CurrencyFormatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s %10s %12s %12s %12s\n",
		"Month",
		s.Units.DistanceLabel(),
		s.Units.VolumeLabel(),
		"cost",
		s.Units.VolumeRatioLabel())

	price := currency.Fractional()
	for _, m := range s.Months {
		fmt.Fprintf(&b, "%-10s %10d %12.3f %12s %12s\n",
			m.Month.LongLabel(),
			m.Distance,
			m.Volume,
			currency.Format(m.Cost),
			price.Format(m.AveragePrice))
	}

	fmt.Fprintf(&b, "%-10s %10d %12.3f %12s\n",
		"Total", s.TotalDistance, s.TotalVolume, currency.Format(s.TotalCost))
	fmt.Fprintf(&b, "%-10s %10.1f %12.3f %12s\n",
		"Average", s.AverageDistance, s.AverageVolume, currency.Format(s.AverageCost))
	if s.CostPerDistance > 0 {
		fmt.Fprintf(&b, "Cost per %s: %s\n",
			s.Units.DistanceLabel(), price.Format(s.CostPerDistance))
	}

	if s.Summary != nil {
		fmt.Fprintf(&b, "\nMileage (%s): min %.2f avg %.2f max %.2f over %d fill-ups\n",
			s.Units.EfficiencyLabel(),
			s.Summary.Min, s.Summary.Average, s.Summary.Max, s.Summary.Count)
	}

	return b.String()
}

// ForPlotRange is a convenience for callers that want the report over the
// configured plot range ending now.
func ForPlotRange(records []*core.RefuelRecord, kind core.RangeKind, units core.UnitSystem, now time.Time) *Statistics {
	return Build(records, core.NewDateRange(kind, now), units)
}
