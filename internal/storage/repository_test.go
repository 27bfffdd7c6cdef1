package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wdkapps/fillup/internal/core"
)

func testRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fillup.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func storedVehicle(t *testing.T, repo *SQLiteRepository, name string) core.Vehicle {
	t.Helper()
	v, err := repo.CreateVehicle(context.Background(), core.Vehicle{Name: name, TankCapacity: 16})
	if err != nil {
		t.Fatalf("CreateVehicle(%q) error = %v", name, err)
	}
	return v
}

func storedRecord(vehicleID int64, odometer int) core.RefuelRecord {
	return core.RefuelRecord{
		VehicleID: vehicleID,
		Time:      time.Date(2014, 6, 15, 8, 30, 0, 0, time.Local),
		Odometer:  odometer,
		Volume:    10.5,
		Cost:      36.75,
		FullTank:  true,
		Notes:     "station on 5th",
	}
}

func TestVehicleCRUD(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	created := storedVehicle(t, repo, "Truck")
	if created.ID == 0 {
		t.Fatal("CreateVehicle() assigned no ID")
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetVehicle(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetVehicle() error = %v", err)
		}
		if got.Name != "Truck" || got.TankCapacity != 16 {
			t.Errorf("GetVehicle() = %+v, want name Truck tank 16", got)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "Truck", TankCapacity: 20})
		if !errors.Is(err, core.ErrDuplicateName) {
			t.Errorf("CreateVehicle() error = %v, want ErrDuplicateName", err)
		}
	})

	t.Run("invalid name rejected before storage", func(t *testing.T) {
		_, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "bad/name", TankCapacity: 16})
		if !errors.Is(err, core.ErrInvalidName) {
			t.Errorf("CreateVehicle() error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		updated := created
		updated.Name = "Old Truck"
		updated.TankCapacity = 20
		if err := repo.UpdateVehicle(ctx, updated); err != nil {
			t.Fatalf("UpdateVehicle() error = %v", err)
		}
		got, err := repo.GetVehicle(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetVehicle() error = %v", err)
		}
		if got.Name != "Old Truck" || got.TankCapacity != 20 {
			t.Errorf("GetVehicle() after update = %+v", got)
		}
	})

	t.Run("update missing vehicle", func(t *testing.T) {
		err := repo.UpdateVehicle(ctx, core.Vehicle{ID: 9999, Name: "Ghost", TankCapacity: 16})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("UpdateVehicle() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		storedVehicle(t, repo, "Ambulance")
		vehicles, err := repo.ListVehicles(ctx)
		if err != nil {
			t.Fatalf("ListVehicles() error = %v", err)
		}
		if len(vehicles) != 2 {
			t.Fatalf("len(vehicles) = %d, want 2", len(vehicles))
		}
		if vehicles[0].Name != "Ambulance" {
			t.Errorf("vehicles[0].Name = %q, want Ambulance", vehicles[0].Name)
		}
	})

	t.Run("get missing vehicle", func(t *testing.T) {
		_, err := repo.GetVehicle(ctx, 9999)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetVehicle() error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteVehicle_RemovesRecords(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	v := storedVehicle(t, repo, "Truck")
	rec, err := repo.CreateRecord(ctx, storedRecord(v.ID, 1000))
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	if err := repo.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVehicle() error = %v", err)
	}

	if _, err := repo.GetVehicle(ctx, v.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetVehicle() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetRecord(ctx, rec.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetRecord() after vehicle delete error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteVehicle(ctx, v.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteVehicle() twice error = %v, want ErrNotFound", err)
	}
}

func TestRecordCRUD(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	v := storedVehicle(t, repo, "Truck")

	created, err := repo.CreateRecord(ctx, storedRecord(v.ID, 1000))
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateRecord() assigned no ID")
	}

	t.Run("get round-trips every field", func(t *testing.T) {
		got, err := repo.GetRecord(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetRecord() error = %v", err)
		}
		if !got.Equal(&created) {
			t.Errorf("GetRecord() = %+v, want %+v", got, created)
		}
	})

	t.Run("duplicate odometer for same vehicle", func(t *testing.T) {
		_, err := repo.CreateRecord(ctx, storedRecord(v.ID, 1000))
		if !errors.Is(err, core.ErrDuplicateOdometer) {
			t.Errorf("CreateRecord() error = %v, want ErrDuplicateOdometer", err)
		}
	})

	t.Run("same odometer on another vehicle is fine", func(t *testing.T) {
		other := storedVehicle(t, repo, "Wagon")
		if _, err := repo.CreateRecord(ctx, storedRecord(other.ID, 1000)); err != nil {
			t.Errorf("CreateRecord() error = %v", err)
		}
	})

	t.Run("out-of-range record rejected", func(t *testing.T) {
		bad := storedRecord(v.ID, 1100)
		bad.Volume = 0
		if _, err := repo.CreateRecord(ctx, bad); !errors.Is(err, core.ErrOutOfRange) {
			t.Errorf("CreateRecord() error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		updated := created
		updated.Odometer = 1050
		updated.Notes = "edited"
		updated.HideCalc = true
		if err := repo.UpdateRecord(ctx, updated); err != nil {
			t.Fatalf("UpdateRecord() error = %v", err)
		}
		got, err := repo.GetRecord(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetRecord() error = %v", err)
		}
		if got.Odometer != 1050 || got.Notes != "edited" || !got.HideCalc {
			t.Errorf("GetRecord() after update = %+v", got)
		}
	})

	t.Run("update missing record", func(t *testing.T) {
		missing := storedRecord(v.ID, 2000)
		missing.ID = 9999
		if err := repo.UpdateRecord(ctx, missing); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("UpdateRecord() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.DeleteRecord(ctx, created.ID); err != nil {
			t.Fatalf("DeleteRecord() error = %v", err)
		}
		if _, err := repo.GetRecord(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetRecord() after delete error = %v, want ErrNotFound", err)
		}
		if err := repo.DeleteRecord(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteRecord() twice error = %v, want ErrNotFound", err)
		}
	})
}

func TestListRecords_OrderedByOdometer(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	v := storedVehicle(t, repo, "Truck")

	for _, odometer := range []int{1400, 1000, 1200} {
		if _, err := repo.CreateRecord(ctx, storedRecord(v.ID, odometer)); err != nil {
			t.Fatalf("CreateRecord(%d) error = %v", odometer, err)
		}
	}

	records, err := repo.ListRecords(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []int{1000, 1200, 1400} {
		if records[i].Odometer != want {
			t.Errorf("records[%d].Odometer = %d, want %d", i, records[i].Odometer, want)
		}
	}
}

func TestCurrentOdometer(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	v := storedVehicle(t, repo, "Truck")

	got, err := repo.CurrentOdometer(ctx, v.ID)
	if err != nil {
		t.Fatalf("CurrentOdometer() error = %v", err)
	}
	if got != 0 {
		t.Errorf("CurrentOdometer() with no records = %d, want 0", got)
	}

	for _, odometer := range []int{1000, 1400, 1200} {
		if _, err := repo.CreateRecord(ctx, storedRecord(v.ID, odometer)); err != nil {
			t.Fatalf("CreateRecord(%d) error = %v", odometer, err)
		}
	}

	got, err = repo.CurrentOdometer(ctx, v.ID)
	if err != nil {
		t.Fatalf("CurrentOdometer() error = %v", err)
	}
	if got != 1400 {
		t.Errorf("CurrentOdometer() = %d, want 1400", got)
	}
}

func TestImportRecords(t *testing.T) {
	t.Run("imports the whole batch", func(t *testing.T) {
		repo := testRepository(t)
		ctx := context.Background()
		v := storedVehicle(t, repo, "Truck")

		batch := []core.RefuelRecord{
			storedRecord(0, 1000),
			storedRecord(0, 1200),
			storedRecord(0, 1400),
		}
		n, err := repo.ImportRecords(ctx, v.ID, batch)
		if err != nil {
			t.Fatalf("ImportRecords() error = %v", err)
		}
		if n != 3 {
			t.Errorf("ImportRecords() = %d, want 3", n)
		}

		records, err := repo.ListRecords(ctx, v.ID)
		if err != nil {
			t.Fatalf("ListRecords() error = %v", err)
		}
		if len(records) != 3 {
			t.Errorf("len(records) = %d, want 3", len(records))
		}
	})

	t.Run("failure rolls everything back", func(t *testing.T) {
		repo := testRepository(t)
		ctx := context.Background()
		v := storedVehicle(t, repo, "Truck")

		batch := []core.RefuelRecord{
			storedRecord(0, 1000),
			storedRecord(0, 1000), // duplicate odometer
			storedRecord(0, 1400),
		}
		_, err := repo.ImportRecords(ctx, v.ID, batch)
		var malformed *core.MalformedLineError
		if !errors.As(err, &malformed) {
			t.Fatalf("ImportRecords() error = %v, want MalformedLineError", err)
		}
		if malformed.Line != 2 {
			t.Errorf("Line = %d, want 2", malformed.Line)
		}

		records, err := repo.ListRecords(ctx, v.ID)
		if err != nil {
			t.Fatalf("ListRecords() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("len(records) = %d after failed import, want 0", len(records))
		}
	})

	t.Run("invalid record reports its index", func(t *testing.T) {
		repo := testRepository(t)
		ctx := context.Background()
		v := storedVehicle(t, repo, "Truck")

		bad := storedRecord(0, 1200)
		bad.Volume = 0
		batch := []core.RefuelRecord{storedRecord(0, 1000), bad}

		_, err := repo.ImportRecords(ctx, v.ID, batch)
		var malformed *core.MalformedLineError
		if !errors.As(err, &malformed) {
			t.Fatalf("ImportRecords() error = %v, want MalformedLineError", err)
		}
		if malformed.Line != 2 {
			t.Errorf("Line = %d, want 2", malformed.Line)
		}
		if !errors.Is(err, core.ErrOutOfRange) {
			t.Errorf("ImportRecords() error = %v, want wrapped ErrOutOfRange", err)
		}
	})
}

func TestOpenRepository_QuarantinesCorruptDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fillup.db")

	repo, recovered, err := OpenRepository(dbPath)
	if err != nil {
		t.Fatalf("OpenRepository() error = %v", err)
	}
	if recovered {
		t.Error("recovered = true on a fresh database, want false")
	}
	repo.Close()
}
