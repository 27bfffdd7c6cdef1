package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func RunMigrations(dbPath string) error {
	// Separate connection so the migration driver does not interfere with
	// the main pool.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// OpenRepository opens the database at dbPath, migrating it to the current
// schema. If migration fails the existing file is quarantined (renamed with
// a timestamp suffix, never deleted) and a fresh database is created in its
// place; the returned recovered flag tells the caller the old log is gone
// so it can surface that to the user.
func OpenRepository(dbPath string) (*SQLiteRepository, bool, error) {
	repo, err := NewSQLiteRepository(dbPath)
	if err == nil {
		return repo, false, nil
	}

	slog.Warn("database unusable, quarantining and rebuilding",
		"path", dbPath,
		"error", err)

	quarantine := fmt.Sprintf("%s.corrupt-%s", dbPath, time.Now().Format("20060102-150405"))
	if renameErr := os.Rename(dbPath, quarantine); renameErr != nil {
		return nil, false, fmt.Errorf("quarantine database: %w (after: %v)", renameErr, err)
	}

	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, false, fmt.Errorf("rebuild database: %w", err)
	}

	slog.Info("database rebuilt", "path", dbPath, "quarantined", quarantine)
	return repo, true, nil
}
