package core

import (
	"fmt"
	"sort"
)

// MileageCalculation is the fuel-efficiency figure for one segment between
// two successive full-tank refuels. It is attached to the record that closed
// the segment.
type MileageCalculation struct {
	StartOdometer int
	EndOdometer   int
	FuelUsed      float32
	Units         UnitSystem
}

func newMileageCalculation(start *RefuelRecord, units UnitSystem) *MileageCalculation {
	return &MileageCalculation{
		StartOdometer: start.Odometer,
		EndOdometer:   start.Odometer,
		FuelUsed:      0,
		Units:         units,
	}
}

// add extends the segment with a record. Records must arrive in ascending
// odometer order.
func (c *MileageCalculation) add(r *RefuelRecord) {
	c.EndOdometer = r.Odometer
	c.FuelUsed += r.Volume
}

// Distance returns the distance driven across the segment.
func (c *MileageCalculation) Distance() int {
	return c.EndOdometer - c.StartOdometer
}

// Mileage returns the fuel efficiency in the segment's unit system.
func (c *MileageCalculation) Mileage() float32 {
	return c.Units.Efficiency(c.Distance(), c.FuelUsed)
}

func (c *MileageCalculation) String() string {
	return fmt.Sprintf("%.2f %s", c.Mileage(), c.Units.EfficiencyLabel())
}

// CalculateMileage sorts records by odometer and attaches a
// MileageCalculation to every record that closes a segment. Fuel purchased
// after the opening full tank, up to and including the closing full tank, is
// what was burned driving the segment, so partial fills contribute to the
// following full-tank record.
//
// Records with equal odometer values cannot exist for one vehicle; if the
// input contains them anyway the engine refuses with ErrInconsistentInput.
func CalculateMileage(records []*RefuelRecord, units UnitSystem) error {
	if len(records) == 0 {
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Odometer < records[j].Odometer
	})
	for i := 1; i < len(records); i++ {
		if records[i].Odometer == records[i-1].Odometer {
			return fmt.Errorf("%w: odometer %d", ErrInconsistentInput, records[i].Odometer)
		}
	}

	// find the first full tank; everything before it has no calculation
	var calc *MileageCalculation
	start := len(records)
	for i, r := range records {
		r.Calc = nil
		if r.FullTank {
			calc = newMileageCalculation(r, units)
			start = i + 1
			break
		}
	}

	for _, r := range records[start:] {
		calc.add(r)
		if r.FullTank {
			r.Calc = calc
			calc = newMileageCalculation(r, units)
		} else {
			r.Calc = nil
		}
	}
	return nil
}

// HasFullTank reports whether any record marks a full tank. Without one the
// engine can never close a segment.
func HasFullTank(records []*RefuelRecord) bool {
	for _, r := range records {
		if r.FullTank {
			return true
		}
	}
	return false
}

// findPreviousFullTank returns the index of the nearest full-tank record
// before idx, or -1.
func findPreviousFullTank(records []*RefuelRecord, idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if records[i].FullTank {
			return i
		}
	}
	return -1
}

// CanEstimate reports whether EstimateMileage has enough data for the record
// at idx: a positive tank capacity, a partial-tank record under evaluation,
// and an earlier full tank to open the segment.
func CanEstimate(vehicle Vehicle, records []*RefuelRecord, idx int) bool {
	if vehicle.TankCapacity <= 0 {
		return false
	}
	if len(records) < 2 || idx < 1 || idx > len(records)-1 {
		return false
	}
	if records[idx].FullTank {
		return false
	}
	return findPreviousFullTank(records, idx) >= 0
}

// EstimateMileage produces a hypothetical calculation for the partial-tank
// record at idx, assuming the gauge shows fraction gauge of a full tank.
// The record is treated as if the purchase had topped the tank off: its
// volume grows by the fuel needed to fill the remainder. The input list is
// left untouched; the engine runs over copies.
func EstimateMileage(vehicle Vehicle, records []*RefuelRecord, idx int, gauge float32, units UnitSystem) (*MileageCalculation, error) {
	if gauge < 0 || gauge > 1 {
		return nil, fmt.Errorf("%w: gauge position %.2f", ErrOutOfRange, gauge)
	}
	if !CanEstimate(vehicle, records, idx) {
		return nil, ErrInsufficientData
	}

	start := findPreviousFullTank(records, idx)
	window := make([]*RefuelRecord, 0, idx-start+1)
	for _, r := range records[start : idx+1] {
		cp := *r
		cp.Calc = nil
		window = append(window, &cp)
	}

	fillUp := vehicle.TankCapacity * (1.0 - gauge)
	virtual := window[len(window)-1]
	virtual.Volume += fillUp
	virtual.FullTank = true

	if err := CalculateMileage(window, units); err != nil {
		return nil, err
	}
	return virtual.Calc, nil
}
