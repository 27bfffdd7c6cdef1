package core

import "time"

// TripRecord accumulates driving between refuel records: total distance,
// fuel purchased, and money spent, plus the ids of the contributing records.
type TripRecord struct {
	StartDate time.Time
	EndDate   time.Time
	Distance  int
	Volume    float32
	Cost      float64
	RecordIDs map[int64]struct{}
}

// newTrip returns an empty trip pinned to a single date.
func newTrip(date time.Time) *TripRecord {
	return &TripRecord{
		StartDate: date,
		EndDate:   date,
		RecordIDs: make(map[int64]struct{}),
	}
}

// tripBetween derives the hop from one record to the next. The distance is
// the odometer delta; volume and cost are those of the arriving record,
// which is also the record the trip is attributed to.
func tripBetween(start, end *RefuelRecord) *TripRecord {
	t := &TripRecord{
		StartDate: start.Time,
		EndDate:   end.Time,
		Distance:  end.Odometer - start.Odometer,
		Volume:    end.Volume,
		Cost:      end.Cost,
		RecordIDs: make(map[int64]struct{}),
	}
	t.RecordIDs[end.ID] = struct{}{}
	return t
}

// Append folds another trip into this one, widening the date span and
// summing the totals.
func (t *TripRecord) Append(that *TripRecord) {
	if that.StartDate.Before(t.StartDate) {
		t.StartDate = that.StartDate
	}
	if that.EndDate.After(t.EndDate) {
		t.EndDate = that.EndDate
	}
	t.Distance += that.Distance
	t.Volume += that.Volume
	t.Cost += that.Cost
	for id := range that.RecordIDs {
		t.RecordIDs[id] = struct{}{}
	}
}

// AveragePrice is cost per volume unit over the whole trip; zero volume
// yields zero.
func (t *TripRecord) AveragePrice() float64 {
	if t.Volume <= 0 {
		return 0
	}
	return t.Cost / float64(t.Volume)
}

// MonthlyTrips rolls the refuel log of one vehicle up into one TripRecord
// per calendar month. Trips are attributed to the month of the record that
// ends them.
type MonthlyTrips struct {
	byMonth  map[Month]*TripRecord
	earliest Month
	hasData  bool
}

// NewMonthlyTrips builds the roll-up. The input is assumed sorted by
// odometer; the first record contributes a zero-distance trip to its own
// month so that volume and cost totals survive single-record logs.
func NewMonthlyTrips(records []*RefuelRecord) *MonthlyTrips {
	m := &MonthlyTrips{byMonth: make(map[Month]*TripRecord)}
	if len(records) == 0 {
		return m
	}

	first := records[0]
	zero := tripBetween(first, first)
	m.add(zero)
	prev := first
	for _, r := range records[1:] {
		m.add(tripBetween(prev, r))
		prev = r
	}
	return m
}

func (m *MonthlyTrips) add(trip *TripRecord) {
	key := MonthOf(trip.EndDate)
	if existing, ok := m.byMonth[key]; ok {
		existing.Append(trip)
	} else {
		m.byMonth[key] = trip
	}
	if !m.hasData || key.Before(m.earliest) {
		m.earliest = key
	}
	m.hasData = true
}

// TripsFor returns the roll-up for a month. Months without data yield a
// zero-filled trip pinned to the month start, so callers can render gaps
// without nil checks.
func (m *MonthlyTrips) TripsFor(month Month) *TripRecord {
	if t, ok := m.byMonth[month]; ok {
		return t
	}
	return newTrip(month.Start(time.Local))
}

// Earliest returns the first month carrying data; ok is false for an empty
// roll-up.
func (m *MonthlyTrips) Earliest() (Month, bool) {
	return m.earliest, m.hasData
}

// Months lists the months to plot or report for a date range, ascending.
// For the all-data variant the walk starts at the earliest data month,
// still capped by the range's hard two-year floor.
func (m *MonthlyTrips) Months(rng DateRange) []Month {
	start := MonthOf(rng.Start)
	if rng.Kind == RangeAll && m.hasData && start.Before(m.earliest) {
		start = m.earliest
	}

	// rng.End is the first day of the month after the last one in range
	last := MonthOf(rng.End).Prev()

	var months []Month
	for cur := start; !last.Before(cur); cur = cur.Next() {
		months = append(months, cur)
	}
	return months
}
