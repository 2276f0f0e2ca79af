package main

import (
	"context"
	"flag"
	"os"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	"github.com/davidsheshee-hash/shop-ledger/internal/config"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/services"
	"github.com/davidsheshee-hash/shop-ledger/internal/sheets"
	gsheet "github.com/davidsheshee-hash/shop-ledger/internal/sheets/google"
	"github.com/davidsheshee-hash/shop-ledger/internal/worker"
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
	logger, err := cli.SetupLogger(cfg.Logging, log.ComponentWorker, os.Stdout)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid logging configuration", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Starting ledger-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agg, err := cli.NewAggregator(cfg)
	if err != nil {
		return err
	}

	// The worker only reads the blob the server writes.
	store, backendResult, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := backendResult.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	var writer sheets.ReportWriter
	if cfg.Sheets.Enabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			CredentialsFile: cfg.Sheets.CredentialsFile,
		}, logger)
		if err != nil {
			return err
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled, change messages are acknowledged only")
	}

	processor := services.NewReportProcessor(store, writer, agg, services.ReportProcessorConfig{
		RefreshInterval:   cfg.Sheets.RefreshInterval,
		MonthlySheet:      cfg.Sheets.MonthlySheet,
		IncomeSheet:       cfg.Sheets.IncomeSheet,
		ExpenseSheet:      cfg.Sheets.ExpenseSheet,
		TransactionsSheet: cfg.Sheets.TransactionsSheet,
	}, logger)

	var consumer worker.Consumer
	if cfg.AMQP.Enabled() {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		consumer = client
	}

	_, done := cli.GracefulShutdown(logger, cfg.HTTP.ShutdownTimeout, func(context.Context) { cancel() })

	err = worker.New(consumer, processor, logger).Run(ctx)
	if err == nil {
		<-done
	}
	return err
}
