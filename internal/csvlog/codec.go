// Package csvlog implements the line format used to move refuel records in
// and out of the application. The format predates this codebase and has to
// stay readable by (and from) every database generation:
//
//	schema >= 5: datetime,odometer,volume,fulltank,hidden,cost,notes[,efficiency]
//	schema <  5: datetime,odometer,volume,fulltank,hidden[,efficiency]
//
// The trailing efficiency column is informational only; readers recompute it.
package csvlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wdkapps/fillup/internal/core"
)

const (
	// locale-invariant timestamp layouts; the short form is the pre-time
	// export format and parses to midnight
	dateTimeLayout = "01/02/2006 15:04"
	dateLayout     = "01/02/2006"
)

// ParseLine decodes one CSV line into a record. The line number is only used
// to build error values.
func ParseLine(line string, num int) (core.RefuelRecord, error) {
	var rec core.RefuelRecord

	fields := strings.Split(line, ",")
	switch len(fields) {
	case 7, 8: // current schema, optionally with efficiency
		if err := parseCommon(&rec, fields, num); err != nil {
			return rec, err
		}
		cost, err := parseDecimal(fields[5], 0, core.MaxCost)
		if err != nil {
			return rec, &core.MalformedLineError{Line: num, Field: "cost", Cause: err}
		}
		rec.Cost = cost
		rec.Notes = core.SanitizeNotes(fields[6])

	case 5, 6: // pre-cost schema, optionally with efficiency
		if err := parseCommon(&rec, fields, num); err != nil {
			return rec, err
		}

	default:
		return rec, &core.MalformedLineError{
			Line:  num,
			Cause: fmt.Errorf("expected 5-8 fields, got %d", len(fields)),
		}
	}

	return rec, nil
}

// parseCommon handles the five fields shared by both schema generations.
func parseCommon(rec *core.RefuelRecord, fields []string, num int) error {
	ts, err := parseDateTime(fields[0])
	if err != nil {
		return &core.MalformedLineError{Line: num, Field: "datetime", Cause: err}
	}
	rec.Time = ts

	odometer, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return &core.MalformedLineError{Line: num, Field: "odometer", Cause: err}
	}
	if odometer < 0 || odometer > core.MaxOdometer {
		return &core.MalformedLineError{Line: num, Field: "odometer", Cause: core.ErrOutOfRange}
	}
	rec.Odometer = odometer

	volume, err := parseDecimal(fields[2], 0, core.MaxVolume)
	if err != nil {
		return &core.MalformedLineError{Line: num, Field: "volume", Cause: err}
	}
	if volume == 0 {
		return &core.MalformedLineError{Line: num, Field: "volume", Cause: core.ErrOutOfRange}
	}
	rec.Volume = float32(volume)

	rec.FullTank = parseBool(fields[3])
	rec.HideCalc = parseBool(fields[4])
	return nil
}

// parseDateTime accepts the full date/time layout and falls back to the
// date-only layout, which parses as midnight.
func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.ParseInLocation(dateTimeLayout, s, time.Local); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// parseDecimal reads a non-negative number, accepting both dot and comma as
// the decimal separator, and range-checks it against [min, max].
func parseDecimal(s string, min, max float64) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, core.ErrOutOfRange
	}
	return v, nil
}

// parseBool matches "true" in any case; everything else is false.
func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// EmitLine encodes a record in the current schema. A closed mileage segment
// is appended as the informational efficiency column.
func EmitLine(rec *core.RefuelRecord) string {
	var b strings.Builder
	b.WriteString(rec.Time.Format(dateTimeLayout))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(rec.Odometer))
	b.WriteByte(',')
	fmt.Fprintf(&b, "%.3f", rec.Volume)
	b.WriteByte(',')
	b.WriteString(strconv.FormatBool(rec.FullTank))
	b.WriteByte(',')
	b.WriteString(strconv.FormatBool(rec.HideCalc))
	b.WriteByte(',')
	fmt.Fprintf(&b, "%.2f", rec.Cost)
	b.WriteByte(',')
	b.WriteString(sanitizeField(rec.Notes))
	if rec.Calc != nil {
		fmt.Fprintf(&b, ",%.2f", rec.Calc.Mileage())
	}
	return b.String()
}

// sanitizeField keeps notes from breaking the literal comma split: commas
// and newlines become spaces.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// Read decodes every line of src. On failure the returned error is a
// MalformedLineError carrying the 1-based offending line number.
func Read(src io.Reader) ([]core.RefuelRecord, error) {
	var records []core.RefuelRecord
	scanner := bufio.NewScanner(src)
	num := 0
	for scanner.Scan() {
		num++
		rec, err := ParseLine(scanner.Text(), num)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", num+1, err)
	}
	return records, nil
}

// Write encodes records to dst, one line each.
func Write(dst io.Writer, records []*core.RefuelRecord) error {
	w := bufio.NewWriter(dst)
	for _, rec := range records {
		if _, err := w.WriteString(EmitLine(rec)); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
