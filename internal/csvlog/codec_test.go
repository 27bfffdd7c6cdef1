package csvlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wdkapps/fillup/internal/core"
)

func TestParseLine(t *testing.T) {
	t.Run("current schema", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014 08:30,1500,10.500,true,false,36.75,cheap station", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}

		want := time.Date(2014, 6, 15, 8, 30, 0, 0, time.Local)
		if !rec.Time.Equal(want) {
			t.Errorf("Time = %v, want %v", rec.Time, want)
		}
		if rec.Odometer != 1500 {
			t.Errorf("Odometer = %d, want 1500", rec.Odometer)
		}
		if rec.Volume != 10.5 {
			t.Errorf("Volume = %v, want 10.5", rec.Volume)
		}
		if !rec.FullTank || rec.HideCalc {
			t.Errorf("FullTank = %v HideCalc = %v, want true false", rec.FullTank, rec.HideCalc)
		}
		if rec.Cost != 36.75 {
			t.Errorf("Cost = %v, want 36.75", rec.Cost)
		}
		if rec.Notes != "cheap station" {
			t.Errorf("Notes = %q, want %q", rec.Notes, "cheap station")
		}
	})

	t.Run("trailing efficiency column is ignored", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014 08:30,1500,10.500,true,false,36.75,notes,18.25", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}
		if rec.Calc != nil {
			t.Error("Calc should never be populated from a parsed line")
		}
	})

	t.Run("pre-cost schema", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014 08:30,1500,10.500,true,false", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}
		if rec.Cost != 0 {
			t.Errorf("Cost = %v, want 0", rec.Cost)
		}
		if rec.Notes != "" {
			t.Errorf("Notes = %q, want empty", rec.Notes)
		}
	})

	t.Run("pre-cost schema with efficiency", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014 08:30,1500,10.500,true,false,18.25", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}
		if rec.Odometer != 1500 || rec.Cost != 0 {
			t.Errorf("Odometer = %d Cost = %v, want 1500 and 0", rec.Odometer, rec.Cost)
		}
	})

	t.Run("date-only timestamp parses to midnight", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014,1500,10.500,true,false", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}
		want := time.Date(2014, 6, 15, 0, 0, 0, 0, time.Local)
		if !rec.Time.Equal(want) {
			t.Errorf("Time = %v, want %v", rec.Time, want)
		}
	})

	t.Run("boolean is case insensitive", func(t *testing.T) {
		rec, err := ParseLine("06/15/2014 08:30,1500,10.500,TRUE,False", 1)
		if err != nil {
			t.Fatalf("ParseLine() error = %v", err)
		}
		if !rec.FullTank || rec.HideCalc {
			t.Errorf("FullTank = %v HideCalc = %v, want true false", rec.FullTank, rec.HideCalc)
		}
	})

	errorCases := []struct {
		name  string
		line  string
		field string
	}{
		{"bad timestamp", "15-06-2014,1500,10.500,true,false", "datetime"},
		{"bad odometer", "06/15/2014 08:30,abc,10.500,true,false", "odometer"},
		{"odometer over cap", "06/15/2014 08:30,10000000,10.500,true,false", "odometer"},
		{"zero volume", "06/15/2014 08:30,1500,0,true,false", "volume"},
		{"bad volume", "06/15/2014 08:30,1500,ten,true,false", "volume"},
		{"cost over cap", "06/15/2014 08:30,1500,10.500,true,false,1000000,notes", "cost"},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line, 7)
			var malformed *core.MalformedLineError
			if !errors.As(err, &malformed) {
				t.Fatalf("ParseLine() error = %v, want MalformedLineError", err)
			}
			if malformed.Line != 7 {
				t.Errorf("Line = %d, want 7", malformed.Line)
			}
			if malformed.Field != tt.field {
				t.Errorf("Field = %q, want %q", malformed.Field, tt.field)
			}
		})
	}

	t.Run("wrong field count", func(t *testing.T) {
		_, err := ParseLine("too,few", 3)
		var malformed *core.MalformedLineError
		if !errors.As(err, &malformed) {
			t.Fatalf("ParseLine() error = %v, want MalformedLineError", err)
		}
		if malformed.Line != 3 {
			t.Errorf("Line = %d, want 3", malformed.Line)
		}
	})
}

func TestEmitLine(t *testing.T) {
	rec := &core.RefuelRecord{
		Time:     time.Date(2014, 6, 15, 8, 30, 0, 0, time.Local),
		Odometer: 1500,
		Volume:   10.5,
		FullTank: true,
	}

	t.Run("without calculation", func(t *testing.T) {
		got := EmitLine(rec)
		want := "06/15/2014 08:30,1500,10.500,true,false,0.00,"
		if got != want {
			t.Errorf("EmitLine() = %q, want %q", got, want)
		}
	})

	t.Run("with calculation", func(t *testing.T) {
		withCalc := *rec
		withCalc.Calc = &core.MileageCalculation{
			StartOdometer: 1300,
			EndOdometer:   1500,
			FuelUsed:      10.5,
			Units:         core.MilesPerGallon,
		}
		got := EmitLine(&withCalc)
		want := "06/15/2014 08:30,1500,10.500,true,false,0.00,,19.05"
		if got != want {
			t.Errorf("EmitLine() = %q, want %q", got, want)
		}
	})

	t.Run("notes with commas are flattened", func(t *testing.T) {
		noisy := *rec
		noisy.Notes = "one,two\nthree"
		got := EmitLine(&noisy)
		if strings.Count(got, ",") != 6 {
			t.Errorf("EmitLine() = %q, want exactly 6 commas", got)
		}
		if !strings.HasSuffix(got, "one two three") {
			t.Errorf("EmitLine() = %q, want flattened notes suffix", got)
		}
	})
}

func TestReadWrite(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		records := []*core.RefuelRecord{
			{
				Time:     time.Date(2014, 6, 1, 9, 0, 0, 0, time.Local),
				Odometer: 1000,
				Volume:   10,
				Cost:     35,
				FullTank: true,
				Notes:    "first",
			},
			{
				Time:     time.Date(2014, 6, 15, 8, 30, 0, 0, time.Local),
				Odometer: 1200,
				Volume:   8.25,
				Cost:     29.70,
				FullTank: false,
			},
		}

		var buf strings.Builder
		if err := Write(&buf, records); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		got, err := Read(strings.NewReader(buf.String()))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(records) = %d, want 2", len(got))
		}
		for i := range got {
			if got[i].Odometer != records[i].Odometer {
				t.Errorf("records[%d].Odometer = %d, want %d", i, got[i].Odometer, records[i].Odometer)
			}
			if !got[i].Time.Equal(records[i].Time) {
				t.Errorf("records[%d].Time = %v, want %v", i, got[i].Time, records[i].Time)
			}
			if got[i].Volume != records[i].Volume {
				t.Errorf("records[%d].Volume = %v, want %v", i, got[i].Volume, records[i].Volume)
			}
			if got[i].Cost != records[i].Cost {
				t.Errorf("records[%d].Cost = %v, want %v", i, got[i].Cost, records[i].Cost)
			}
			if got[i].FullTank != records[i].FullTank {
				t.Errorf("records[%d].FullTank = %v, want %v", i, got[i].FullTank, records[i].FullTank)
			}
			if got[i].Notes != records[i].Notes {
				t.Errorf("records[%d].Notes = %q, want %q", i, got[i].Notes, records[i].Notes)
			}
		}
	})

	t.Run("failure carries the offending line number", func(t *testing.T) {
		src := strings.NewReader(
			"06/15/2014 08:30,1000,10.000,true,false\n" +
				"06/16/2014 08:30,garbage,10.000,true,false\n")
		_, err := Read(src)
		var malformed *core.MalformedLineError
		if !errors.As(err, &malformed) {
			t.Fatalf("Read() error = %v, want MalformedLineError", err)
		}
		if malformed.Line != 2 {
			t.Errorf("Line = %d, want 2", malformed.Line)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := Read(strings.NewReader(""))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(records) = %d, want 0", len(got))
		}
	})
}
