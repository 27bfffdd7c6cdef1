package core

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"
)

// value caps, shared with data entry and the CSV codec
const (
	MaxOdometer = 9999999
	MaxVolume   = 9999.999
	MaxCost     = 999999.999
	MaxPrice    = 999999.999
)

// RefuelRecord documents one fuel purchase. Odometer values are unique per
// vehicle; timestamps are only used for monthly attribution.
type RefuelRecord struct {
	ID        int64
	VehicleID int64
	Time      time.Time
	Odometer  int
	Volume    float32
	Cost      float64
	FullTank  bool
	HideCalc  bool
	Notes     string

	// Calc is derived, never persisted. The mileage engine attaches it to
	// the record that closes a segment.
	Calc *MileageCalculation
}

// Price is the derived cost per volume unit. A zero volume yields zero.
func (r *RefuelRecord) Price() float64 {
	if r.Volume <= 0 {
		return 0
	}
	return r.Cost / float64(r.Volume)
}

func (r *RefuelRecord) Validate() error {
	if r.Odometer < 0 || r.Odometer > MaxOdometer {
		return fmt.Errorf("%w: odometer %d", ErrOutOfRange, r.Odometer)
	}
	if r.Volume <= 0 || float64(r.Volume) > MaxVolume {
		return fmt.Errorf("%w: volume %.3f", ErrOutOfRange, r.Volume)
	}
	if r.Cost < 0 || r.Cost > MaxCost {
		return fmt.Errorf("%w: cost %.2f", ErrOutOfRange, r.Cost)
	}
	return nil
}

// SanitizeNotes makes free text safe for storage and the CSV line format:
// newlines become spaces and surrounding whitespace is dropped.
func SanitizeNotes(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// Hash is a stable digest over every attribute of the record, including the
// derived price. It exists to detect in-memory mutation between reads.
func (r *RefuelRecord) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeFloat := func(v float64) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	writeBool := func(v bool) {
		if v {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	writeInt(r.ID)
	writeInt(r.VehicleID)
	writeInt(r.Time.UnixMilli())
	writeFloat(float64(r.Volume))
	writeInt(int64(r.Odometer))
	writeFloat(r.Cost)
	h.Write([]byte(r.Notes))
	writeBool(r.FullTank)
	writeBool(r.HideCalc)
	writeFloat(r.Price())
	return h.Sum64()
}

// Equal compares the same attributes Hash covers.
func (r *RefuelRecord) Equal(that *RefuelRecord) bool {
	if r == nil || that == nil {
		return r == that
	}
	return r.ID == that.ID &&
		r.VehicleID == that.VehicleID &&
		r.Time.UnixMilli() == that.Time.UnixMilli() &&
		r.Volume == that.Volume &&
		r.Odometer == that.Odometer &&
		r.Cost == that.Cost &&
		r.Notes == that.Notes &&
		r.FullTank == that.FullTank &&
		r.HideCalc == that.HideCalc
}
