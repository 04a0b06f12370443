package main

import (
	"context"
	"errors"
	"time"

	"garagetracker/internal/amqp"
	"garagetracker/internal/backend"
	"garagetracker/internal/cli"
	"garagetracker/internal/config"
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	applog "garagetracker/internal/log"
	gsheet "garagetracker/internal/sheets/google"
	"garagetracker/internal/worker"
)

func main() {
	cfg, logger := cli.Setup(applog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting tracker-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	gw, cleanup := openStore(ctx, cfg, logger)
	defer cleanup()

	syncWorker := worker.NewSyncWorker(sheetsClient, gw)

	// Catch up on the current month in case events were lost while the
	// worker was down.
	if gw != nil {
		month := core.MonthOf(core.DateOf(time.Now()))
		n, err := syncWorker.Backfill(ctx, gateway.Session{UserID: cfg.TrackerUser}, month)
		if err != nil {
			logger.Error("Startup backfill failed", applog.FieldError, err)
		} else {
			logger.Info("Startup backfill complete", "rows", n, "start", month.Start, "end", month.End)
		}
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close failed", applog.FieldError, err)
		}
	}()

	err = amqpClient.ConsumeLedgerEvents(ctx, syncWorker.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Message consumption failed", err)
	}
	logger.Info("Worker shutdown complete")
}

// openStore opens the record store for backfill. Only the sqlite backend is
// shared with the server; with any other backend, or when backfill is off,
// it returns a nil gateway.
func openStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (gateway.Gateway, func()) {
	noop := func() {}
	if !cfg.BackfillOnStart || cfg.DataBackend != string(backend.SQLiteBackend) {
		logger.Info("Startup backfill disabled", "backend", cfg.DataBackend, "enabled", cfg.BackfillOnStart)
		return nil, noop
	}

	store, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(ctx, backend.Config{Type: backend.SQLiteBackend, SQLiteDBPath: cfg.SQLiteDBPath})
	if err != nil {
		logger.Error("Failed to open record store, skipping backfill", applog.FieldError, err)
		return nil, noop
	}
	return store.Gateway, func() {
		if store.Cleanup == nil {
			return
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}
}
