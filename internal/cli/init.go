// Package cli provides common CLI initialization utilities shared by
// cmd/fillup and cmd/fillup-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/wdkapps/fillup/internal/config"
	applog "github.com/wdkapps/fillup/internal/log"
	"github.com/wdkapps/fillup/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository, rebuilding the database from
// scratch if the existing file cannot be migrated. Exits the process when
// even the rebuild fails.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, recovered, err := storage.OpenRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	if recovered {
		logger.Warn("Existing database could not be migrated; starting with an empty fuel log",
			"path", dbPath)
	}
	return repo
}
