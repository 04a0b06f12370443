package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"garagetracker/internal/backend"
	"garagetracker/internal/cli"
	"garagetracker/internal/config"
	apphttp "garagetracker/internal/http"
	applog "garagetracker/internal/log"
	"garagetracker/internal/photostore/local"
	"garagetracker/internal/services"
)

func main() {
	cfg, logger := cli.Setup(applog.ComponentApp, (*config.Config).Validate)

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	store, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if store.Cleanup == nil {
			return
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	photos, err := local.NewLocalPhotoStore(cfg.UploadDir, cfg.UploadPublicURL)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize attachment store", err, "dir", cfg.UploadDir)
	}

	resolver := services.NewCustomerResolver(store.Gateway)
	srv := apphttp.NewServer(apphttp.Services{
		Ledger:    services.NewLedgerService(store.Gateway, resolver, services.NewUploader(photos), store.Publisher),
		Summary:   services.NewSummarizer(store.Gateway),
		Customers: services.NewCustomerDirectory(store.Gateway),
		Employees: services.NewEmployeeService(store.Gateway),
	}, apphttp.Options{
		Addr:               ":" + cfg.Port,
		User:               cfg.TrackerUser,
		Password:           cfg.TrackerPassword,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Photos:             photos,
		Ready:              store.Ready,
		Logger:             logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting tracker server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", store.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			cli.Fatal(logger, "Server error", err, "port", cfg.Port)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
