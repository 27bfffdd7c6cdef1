package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wdkapps/fillup/internal/amqp"
	"github.com/wdkapps/fillup/internal/core"
	applog "github.com/wdkapps/fillup/internal/log"
	"github.com/wdkapps/fillup/internal/services"
	"github.com/wdkapps/fillup/internal/sheets"
)

// ExportWorker keeps CSV snapshots of every vehicle's fuel log on disk, and
// optionally mirrors new records to a backup spreadsheet. It reacts to
// change messages from AMQP and re-exports everything on a timer as a
// catch-up for lost messages.
type ExportWorker struct {
	service   *services.FuelLogService
	exportDir string
	appender  sheets.RefuelAppender
}

func NewExportWorker(service *services.FuelLogService, exportDir string, appender sheets.RefuelAppender) *ExportWorker {
	return &ExportWorker{
		service:   service,
		exportDir: exportDir,
		appender:  appender,
	}
}

// HandleChangeMessage processes a single fuel-log change message.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LogChangedMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		applog.FieldVehicleID, msg.VehicleID,
		applog.FieldRecordID, msg.RecordID,
		applog.FieldOperation, msg.Op)

	if msg.Op == amqp.OpVehicleDeleted {
		return w.removeSnapshot(ctx, msg.VehicleID)
	}

	vehicle, err := w.service.Vehicle(ctx, msg.VehicleID)
	if err != nil {
		return fmt.Errorf("get vehicle: %w", err)
	}

	if err := w.exportVehicle(ctx, vehicle); err != nil {
		return err
	}

	if msg.Op == amqp.OpRecordCreated && w.appender != nil && msg.RecordID != 0 {
		if err := w.appendToBackup(ctx, vehicle, msg.RecordID); err != nil {
			// snapshot is already written; the periodic pass will not
			// retry the row, so surface the error for a requeue
			return err
		}
	}

	return nil
}

// ExportAll snapshots every vehicle. Used at startup and on the periodic
// timer to recover from missed messages.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	vehicles, err := w.service.Vehicles(ctx)
	if err != nil {
		return fmt.Errorf("list vehicles: %w", err)
	}

	errorCount := 0
	for _, vehicle := range vehicles {
		if err := w.exportVehicle(ctx, vehicle); err != nil {
			slog.ErrorContext(ctx, "Failed to export vehicle",
				applog.FieldVehicleID, vehicle.ID,
				applog.FieldVehicleName, vehicle.Name,
				applog.FieldError, err)
			errorCount++
		}
	}

	slog.InfoContext(ctx, "Export pass completed",
		"vehicles", len(vehicles),
		"errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("export pass: %d of %d vehicles failed", errorCount, len(vehicles))
	}
	return nil
}

// RunPeriodic re-exports all vehicles on the given interval until ctx is
// cancelled.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) exportVehicle(ctx context.Context, vehicle core.Vehicle) error {
	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	path := w.snapshotPath(vehicle.Name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}

	n, err := w.service.Export(ctx, vehicle.ID, f)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("export vehicle %d: %w", vehicle.ID, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	slog.InfoContext(ctx, "Vehicle log exported",
		applog.FieldVehicleID, vehicle.ID,
		applog.FieldVehicleName, vehicle.Name,
		"records", n,
		"path", path)
	return nil
}

func (w *ExportWorker) appendToBackup(ctx context.Context, vehicle core.Vehicle, recordID int64) error {
	records, err := w.service.Records(ctx, vehicle.ID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	for _, rec := range records {
		if rec.ID == recordID {
			if _, err := w.appender.Append(ctx, vehicle, rec); err != nil {
				return fmt.Errorf("append to backup sheet: %w", err)
			}
			return nil
		}
	}
	// record was deleted before we got here; nothing to back up
	slog.WarnContext(ctx, "Record vanished before backup append",
		applog.FieldVehicleID, vehicle.ID,
		applog.FieldRecordID, recordID)
	return nil
}

func (w *ExportWorker) removeSnapshot(ctx context.Context, vehicleID int64) error {
	// the vehicle row is gone and the message only carries its id, so the
	// snapshot file cannot be matched by name; keep it as a last copy
	slog.InfoContext(ctx, "Vehicle deleted, keeping last snapshot on disk",
		applog.FieldVehicleID, vehicleID)
	return nil
}

func (w *ExportWorker) snapshotPath(vehicleName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, vehicleName)
	return filepath.Join(w.exportDir, name+".csv")
}
