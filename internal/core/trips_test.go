package core

import (
	"testing"
	"time"
)

func tripRecord(id int64, day time.Time, odometer int, volume float32, cost float64) *RefuelRecord {
	return &RefuelRecord{
		ID:       id,
		Time:     day,
		Odometer: odometer,
		Volume:   volume,
		Cost:     cost,
		FullTank: true,
	}
}

func TestNewMonthlyTrips(t *testing.T) {
	jan := time.Date(2014, 1, 10, 12, 0, 0, 0, time.Local)
	feb := time.Date(2014, 2, 5, 12, 0, 0, 0, time.Local)
	apr := time.Date(2014, 4, 20, 12, 0, 0, 0, time.Local)

	records := []*RefuelRecord{
		tripRecord(1, jan, 1000, 10, 30),
		tripRecord(2, feb, 1300, 12, 40),
		tripRecord(3, apr, 1500, 8, 28),
	}

	trips := NewMonthlyTrips(records)

	t.Run("first record is a zero-distance trip", func(t *testing.T) {
		trip := trips.TripsFor(Month{2014, time.January})
		if trip.Distance != 0 {
			t.Errorf("January distance = %d, want 0", trip.Distance)
		}
		if !almostEqual(trip.Volume, 10) {
			t.Errorf("January volume = %v, want 10", trip.Volume)
		}
		if trip.Cost != 30 {
			t.Errorf("January cost = %v, want 30", trip.Cost)
		}
	})

	t.Run("trip goes to the month of the closing record", func(t *testing.T) {
		trip := trips.TripsFor(Month{2014, time.February})
		if trip.Distance != 300 {
			t.Errorf("February distance = %d, want 300", trip.Distance)
		}
		if !almostEqual(trip.Volume, 12) {
			t.Errorf("February volume = %v, want 12", trip.Volume)
		}
		if _, ok := trip.RecordIDs[2]; !ok {
			t.Error("February trip missing record 2")
		}
	})

	t.Run("months without records yield zero trips", func(t *testing.T) {
		trip := trips.TripsFor(Month{2014, time.March})
		if trip.Distance != 0 || trip.Volume != 0 || trip.Cost != 0 {
			t.Errorf("March trip = %+v, want all zeros", trip)
		}
	})

	t.Run("distance is conserved across months", func(t *testing.T) {
		total := 0
		for m := (Month{2014, time.January}); m.Before(Month{2014, time.May}); m = m.Next() {
			total += trips.TripsFor(m).Distance
		}
		want := records[len(records)-1].Odometer - records[0].Odometer
		if total != want {
			t.Errorf("summed distance = %d, want %d", total, want)
		}
	})

	t.Run("earliest", func(t *testing.T) {
		earliest, ok := trips.Earliest()
		if !ok {
			t.Fatal("Earliest() ok = false, want true")
		}
		if earliest != (Month{2014, time.January}) {
			t.Errorf("Earliest() = %v %v, want Jan 2014", earliest.Year, earliest.M)
		}
	})
}

func TestNewMonthlyTrips_Empty(t *testing.T) {
	trips := NewMonthlyTrips(nil)
	if _, ok := trips.Earliest(); ok {
		t.Error("Earliest() ok = true for empty roll-up, want false")
	}
	trip := trips.TripsFor(Month{2014, time.June})
	if trip == nil || trip.Distance != 0 {
		t.Errorf("TripsFor() on empty roll-up = %+v, want zero trip", trip)
	}
}

func TestMonthlyTrips_SameMonthAccumulates(t *testing.T) {
	jun1 := time.Date(2014, 6, 1, 8, 0, 0, 0, time.Local)
	jun15 := time.Date(2014, 6, 15, 8, 0, 0, 0, time.Local)
	jun28 := time.Date(2014, 6, 28, 8, 0, 0, 0, time.Local)

	records := []*RefuelRecord{
		tripRecord(1, jun1, 1000, 10, 30),
		tripRecord(2, jun15, 1250, 11, 33),
		tripRecord(3, jun28, 1480, 10, 31),
	}

	trip := NewMonthlyTrips(records).TripsFor(Month{2014, time.June})
	if trip.Distance != 480 {
		t.Errorf("distance = %d, want 480", trip.Distance)
	}
	if !almostEqual(trip.Volume, 31) {
		t.Errorf("volume = %v, want 31", trip.Volume)
	}
	if trip.Cost != 94 {
		t.Errorf("cost = %v, want 94", trip.Cost)
	}
	if len(trip.RecordIDs) != 3 {
		t.Errorf("record ids = %d, want 3", len(trip.RecordIDs))
	}
	if got := trip.AveragePrice(); !almostEqual(float32(got), float32(94.0/31.0)) {
		t.Errorf("AveragePrice() = %v, want %v", got, 94.0/31.0)
	}
}

func TestMonthlyTrips_Months(t *testing.T) {
	now := time.Date(2014, 6, 15, 12, 0, 0, 0, time.Local)

	t.Run("fixed window lists every month in range", func(t *testing.T) {
		trips := NewMonthlyTrips(nil)
		months := trips.Months(NewDateRange(RangePast6Months, now))
		if len(months) != 6 {
			t.Fatalf("len(months) = %d, want 6", len(months))
		}
		if months[0] != (Month{2014, time.January}) {
			t.Errorf("months[0] = %v %v, want Jan 2014", months[0].Year, months[0].M)
		}
		if months[5] != (Month{2014, time.June}) {
			t.Errorf("months[5] = %v %v, want Jun 2014", months[5].Year, months[5].M)
		}
	})

	t.Run("all-data walk starts at the earliest data month", func(t *testing.T) {
		records := []*RefuelRecord{
			tripRecord(1, time.Date(2014, 3, 2, 8, 0, 0, 0, time.Local), 1000, 10, 30),
			tripRecord(2, time.Date(2014, 5, 9, 8, 0, 0, 0, time.Local), 1400, 12, 36),
		}
		months := NewMonthlyTrips(records).Months(NewDateRange(RangeAll, now))
		if len(months) != 4 {
			t.Fatalf("len(months) = %d, want 4 (Mar..Jun)", len(months))
		}
		if months[0] != (Month{2014, time.March}) {
			t.Errorf("months[0] = %v %v, want Mar 2014", months[0].Year, months[0].M)
		}
	})

	t.Run("all-data walk keeps the two-year floor", func(t *testing.T) {
		records := []*RefuelRecord{
			tripRecord(1, time.Date(2010, 1, 2, 8, 0, 0, 0, time.Local), 1000, 10, 30),
		}
		months := NewMonthlyTrips(records).Months(NewDateRange(RangeAll, now))
		if len(months) != 24 {
			t.Fatalf("len(months) = %d, want 24", len(months))
		}
		if months[0] != (Month{2012, time.July}) {
			t.Errorf("months[0] = %v %v, want Jul 2012", months[0].Year, months[0].M)
		}
	})
}
