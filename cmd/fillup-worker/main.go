package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/wdkapps/fillup/internal/amqp"
	"github.com/wdkapps/fillup/internal/cli"
	"github.com/wdkapps/fillup/internal/services"
	"github.com/wdkapps/fillup/internal/sheets"
	gsheet "github.com/wdkapps/fillup/internal/sheets/google"
	"github.com/wdkapps/fillup/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting fillup-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Google Sheets backup target is optional
	var appender sheets.RefuelAppender
	if cfg.SheetsBackupEnabled() {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets backup enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets backup disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker only reads, so it shares the service without an AMQP
	// client of its own.
	service := services.NewFuelLogService(sqliteRepo, nil, cfg.Settings())
	exportWorker := worker.NewExportWorker(service, cfg.ExportDir, appender)

	// initial snapshot pass covers anything missed while the worker was down
	if err := exportWorker.ExportAll(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLogChanged(gctx, func(msg *amqp.LogChangedMessage) error {
			return exportWorker.HandleChangeMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
