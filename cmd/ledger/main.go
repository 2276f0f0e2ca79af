package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	apphttp "github.com/davidsheshee-hash/shop-ledger/internal/http"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to ledger.yaml")
	flag.Parse()

	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(*configFile)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg.Logging, log.ComponentApp, os.Stdout)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid logging configuration", log.FieldError, err)
		os.Exit(1)
	}

	agg, err := cli.NewAggregator(cfg)
	if err != nil {
		logger.Error("Invalid display configuration", log.FieldError, err)
		os.Exit(1)
	}

	store, backendResult, err := cli.OpenLedger(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err, log.FieldBackend, cfg.Storage.Backend)
		os.Exit(1)
	}

	// The broker is optional; the ledger works without it.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQP.Enabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change messages", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
		}
	}

	svc := services.NewLedgerService(store, publisher, agg, logger)
	if amqpClient != nil {
		svc.OnClose(amqpClient)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:         ":" + cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		RateLimit:    cfg.HTTP.RateLimit,
		Ready:        backendResult.Ping,
	}, svc, cli.NewFormatter(cfg), logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.HTTP.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger service", log.FieldError, err)
		}
		if err := backendResult.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	})

	logger.Info("Starting ledger server",
		"port", cfg.HTTP.Port,
		log.FieldBackend, cfg.Storage.Backend,
		log.FieldCount, store.Len(),
		"amqp_enabled", publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.HTTP.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
