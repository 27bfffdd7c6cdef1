package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wdkapps/fillup/internal/amqp"
	"github.com/wdkapps/fillup/internal/core"
	"github.com/wdkapps/fillup/internal/csvlog"
	"github.com/wdkapps/fillup/internal/storage"
)

// FuelLogService orchestrates fuel-log operations across SQLite and AMQP.
// Writes go to SQLite first; change notifications are published best-effort
// so the export worker can refresh its snapshots.
type FuelLogService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	settings   core.Settings
}

func NewFuelLogService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, settings core.Settings) *FuelLogService {
	return &FuelLogService{
		storage:    storage,
		amqpClient: amqpClient,
		settings:   settings,
	}
}

// Settings returns the preference snapshot the service was built with.
func (s *FuelLogService) Settings() core.Settings {
	return s.settings
}

// Vehicles lists all vehicles ordered by name.
func (s *FuelLogService) Vehicles(ctx context.Context) ([]core.Vehicle, error) {
	return s.storage.ListVehicles(ctx)
}

// Vehicle fetches a single vehicle.
func (s *FuelLogService) Vehicle(ctx context.Context, id int64) (core.Vehicle, error) {
	return s.storage.GetVehicle(ctx, id)
}

// CreateVehicle adds a vehicle, defaulting its tank capacity for the
// configured unit system when none is given.
func (s *FuelLogService) CreateVehicle(ctx context.Context, name string, tankCapacity float32) (core.Vehicle, error) {
	v := core.NewVehicle(name, s.settings.Units)
	if tankCapacity > 0 {
		v.TankCapacity = tankCapacity
	}
	return s.storage.CreateVehicle(ctx, v)
}

// UpdateVehicle rewrites a vehicle's name and tank capacity.
func (s *FuelLogService) UpdateVehicle(ctx context.Context, v core.Vehicle) error {
	return s.storage.UpdateVehicle(ctx, v)
}

// DeleteVehicle removes a vehicle and its records.
func (s *FuelLogService) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.storage.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, id, 0, amqp.OpVehicleDeleted)
	return nil
}

// Records returns a vehicle's fuel log ordered by odometer, with mileage
// segments attached.
func (s *FuelLogService) Records(ctx context.Context, vehicleID int64) ([]*core.RefuelRecord, error) {
	records, err := s.storage.ListRecords(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := core.CalculateMileage(records, s.settings.Units); err != nil {
		return nil, fmt.Errorf("calculate mileage: %w", err)
	}
	return records, nil
}

// CreateRecord validates cost against the configured policy, saves the
// record, and notifies the export worker.
func (s *FuelLogService) CreateRecord(ctx context.Context, rec core.RefuelRecord) (core.RefuelRecord, error) {
	if s.settings.CostRequired && rec.Cost == 0 {
		return rec, fmt.Errorf("cost is required: %w", core.ErrOutOfRange)
	}
	rec.Notes = core.SanitizeNotes(rec.Notes)

	saved, err := s.storage.CreateRecord(ctx, rec)
	if err != nil {
		return rec, err
	}
	s.publishChange(ctx, saved.VehicleID, saved.ID, amqp.OpRecordCreated)
	return saved, nil
}

// UpdateRecord rewrites a record and notifies the export worker.
func (s *FuelLogService) UpdateRecord(ctx context.Context, rec core.RefuelRecord) error {
	if s.settings.CostRequired && rec.Cost == 0 {
		return fmt.Errorf("cost is required: %w", core.ErrOutOfRange)
	}
	rec.Notes = core.SanitizeNotes(rec.Notes)

	if err := s.storage.UpdateRecord(ctx, rec); err != nil {
		return err
	}
	s.publishChange(ctx, rec.VehicleID, rec.ID, amqp.OpRecordUpdated)
	return nil
}

// DeleteRecord removes a record and notifies the export worker.
func (s *FuelLogService) DeleteRecord(ctx context.Context, vehicleID, id int64) error {
	if err := s.storage.DeleteRecord(ctx, id); err != nil {
		return err
	}
	s.publishChange(ctx, vehicleID, id, amqp.OpRecordDeleted)
	return nil
}

// CurrentOdometer returns the highest recorded odometer for a vehicle.
func (s *FuelLogService) CurrentOdometer(ctx context.Context, vehicleID int64) (int, error) {
	return s.storage.CurrentOdometer(ctx, vehicleID)
}

// Monthly aggregates a vehicle's records into per-month trips.
func (s *FuelLogService) Monthly(ctx context.Context, vehicleID int64) (*core.MonthlyTrips, error) {
	records, err := s.Records(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return core.NewMonthlyTrips(records), nil
}

// PlotRange resolves the configured plot range against the current time.
func (s *FuelLogService) PlotRange(now time.Time) core.DateRange {
	return core.NewDateRange(s.settings.PlotDateRange, now)
}

// Estimate computes a what-if mileage figure for the record at the given
// position using the current gauge reading.
func (s *FuelLogService) Estimate(ctx context.Context, vehicleID, recordID int64, gauge float32) (*core.MileageCalculation, error) {
	vehicle, err := s.storage.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	records, err := s.storage.ListRecords(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range records {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("record %d: %w", recordID, core.ErrNotFound)
	}
	if !core.CanEstimate(vehicle, records, idx) {
		return nil, fmt.Errorf("estimate record %d: %w", recordID, core.ErrInsufficientData)
	}
	return core.EstimateMileage(vehicle, records, idx, gauge, s.settings.Units)
}

// Import parses a CSV fuel log and loads it into a vehicle's log in one
// transaction. Nothing is kept when any line fails.
func (s *FuelLogService) Import(ctx context.Context, vehicleID int64, src io.Reader) (int, error) {
	records, err := csvlog.Read(src)
	if err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}

	n, err := s.storage.ImportRecords(ctx, vehicleID, records)
	if err != nil {
		return 0, err
	}
	s.publishChange(ctx, vehicleID, 0, amqp.OpRecordsImported)
	return n, nil
}

// Export writes a vehicle's fuel log to dst in CSV form, mileage segments
// included.
func (s *FuelLogService) Export(ctx context.Context, vehicleID int64, dst io.Writer) (int, error) {
	records, err := s.Records(ctx, vehicleID)
	if err != nil {
		return 0, err
	}
	if err := csvlog.Write(dst, records); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(records), nil
}

func (s *FuelLogService) publishChange(ctx context.Context, vehicleID, recordID int64, op string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change message", "op", op)
		return
	}
	// best-effort: the write already landed in SQLite
	if err := s.amqpClient.PublishLogChanged(ctx, vehicleID, recordID, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"vehicle_id", vehicleID,
			"record_id", recordID,
			"op", op,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *FuelLogService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close fuel log service: %v", errs)
	}

	return nil
}
