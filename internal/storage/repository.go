package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wdkapps/fillup/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// mapConstraintError translates sqlite unique-constraint failures into the
// domain sentinels callers match on. Anything else passes through.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "vehicles.name"):
		return fmt.Errorf("%w: %v", core.ErrDuplicateName, err)
	case strings.Contains(msg, "records.vehicle_id") || strings.Contains(msg, "records.odometer"):
		return fmt.Errorf("%w: %v", core.ErrDuplicateOdometer, err)
	}
	return err
}

// CreateVehicle inserts a vehicle and returns it with its assigned ID.
func (r *SQLiteRepository) CreateVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return v, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (name, tank_size) VALUES (?, ?)`,
		v.Name, v.TankCapacity)
	if err != nil {
		return v, fmt.Errorf("create vehicle: %w", mapConstraintError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return v, fmt.Errorf("create vehicle id: %w", err)
	}
	v.ID = id

	slog.InfoContext(ctx, "Vehicle created", "id", v.ID, "name", v.Name)
	return v, nil
}

// UpdateVehicle rewrites a vehicle's name and tank capacity.
func (r *SQLiteRepository) UpdateVehicle(ctx context.Context, v core.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET name = ?, tank_size = ? WHERE id = ?`,
		v.Name, v.TankCapacity, v.ID)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", mapConstraintError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update vehicle %d: %w", v.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteVehicle removes a vehicle and every record attached to it in one
// transaction.
func (r *SQLiteRepository) DeleteVehicle(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete vehicle: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE vehicle_id = ?`, id); err != nil {
		return fmt.Errorf("delete vehicle records: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete vehicle %d: %w", id, core.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete vehicle: %w", err)
	}

	slog.InfoContext(ctx, "Vehicle deleted", "id", id)
	return nil
}

// GetVehicle retrieves a single vehicle by ID.
func (r *SQLiteRepository) GetVehicle(ctx context.Context, id int64) (core.Vehicle, error) {
	var v core.Vehicle
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, tank_size FROM vehicles WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &v.TankCapacity)
	if errors.Is(err, sql.ErrNoRows) {
		return v, fmt.Errorf("vehicle %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return v, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns all vehicles ordered by name.
func (r *SQLiteRepository) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, tank_size FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []core.Vehicle
	for rows.Next() {
		var v core.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.TankCapacity); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

const recordColumns = `id, vehicle_id, time_ms, odometer, volume, cost, full_tank, hidden, notes`

func scanRecord(row interface{ Scan(...any) error }) (core.RefuelRecord, error) {
	var rec core.RefuelRecord
	var timeMS int64
	err := row.Scan(&rec.ID, &rec.VehicleID, &timeMS, &rec.Odometer,
		&rec.Volume, &rec.Cost, &rec.FullTank, &rec.HideCalc, &rec.Notes)
	if err != nil {
		return rec, err
	}
	rec.Time = time.UnixMilli(timeMS).In(time.Local)
	return rec, nil
}

func (r *SQLiteRepository) insertRecord(ctx context.Context, tx *sql.Tx, rec core.RefuelRecord) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (vehicle_id, time_ms, odometer, volume, cost, full_tank, hidden, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VehicleID, rec.Time.UnixMilli(), rec.Odometer, rec.Volume,
		rec.Cost, rec.FullTank, rec.HideCalc, rec.Notes)
	if err != nil {
		return 0, mapConstraintError(err)
	}
	return res.LastInsertId()
}

// CreateRecord inserts a refuel record and returns it with its assigned ID.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.RefuelRecord) (core.RefuelRecord, error) {
	if err := rec.Validate(); err != nil {
		return rec, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("begin create record: %w", err)
	}
	defer tx.Rollback()

	id, err := r.insertRecord(ctx, tx, rec)
	if err != nil {
		return rec, fmt.Errorf("create record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("commit create record: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Record created",
		"id", rec.ID,
		"vehicle_id", rec.VehicleID,
		"odometer", rec.Odometer,
		"volume", rec.Volume)
	return rec, nil
}

// UpdateRecord rewrites every mutable field of a record.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.RefuelRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE records
		 SET time_ms = ?, odometer = ?, volume = ?, cost = ?, full_tank = ?, hidden = ?, notes = ?
		 WHERE id = ?`,
		rec.Time.UnixMilli(), rec.Odometer, rec.Volume, rec.Cost,
		rec.FullTank, rec.HideCalc, rec.Notes, rec.ID)
	if err != nil {
		return fmt.Errorf("update record: %w", mapConstraintError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update record %d: %w", rec.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteRecord removes a single record.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete record %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// GetRecord retrieves a single record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.RefuelRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("record %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns a vehicle's records ordered by ascending odometer,
// the order the mileage engine expects.
func (r *SQLiteRepository) ListRecords(ctx context.Context, vehicleID int64) ([]*core.RefuelRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE vehicle_id = ? ORDER BY odometer`,
		vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*core.RefuelRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CurrentOdometer returns the highest odometer reading recorded for a
// vehicle, or zero when it has no records.
func (r *SQLiteRepository) CurrentOdometer(ctx context.Context, vehicleID int64) (int, error) {
	var odometer sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(odometer) FROM records WHERE vehicle_id = ?`, vehicleID).
		Scan(&odometer)
	if err != nil {
		return 0, fmt.Errorf("current odometer: %w", err)
	}
	return int(odometer.Int64), nil
}

// ImportRecords inserts a batch of records for one vehicle in a single
// transaction. On failure nothing is kept and the returned error wraps a
// MalformedLineError carrying the 1-based index of the record that failed.
func (r *SQLiteRepository) ImportRecords(ctx context.Context, vehicleID int64, records []core.RefuelRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i, rec := range records {
		rec.VehicleID = vehicleID
		if err := rec.Validate(); err != nil {
			return 0, &core.MalformedLineError{Line: i + 1, Cause: err}
		}
		if _, err := r.insertRecord(ctx, tx, rec); err != nil {
			return 0, &core.MalformedLineError{Line: i + 1, Cause: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Records imported", "vehicle_id", vehicleID, "count", len(records))
	return len(records), nil
}
