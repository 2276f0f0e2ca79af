// Package cli provides the initialization shared by cmd/ledger,
// cmd/ledger-worker and cmd/ledgerctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/davidsheshee-hash/shop-ledger/internal/backend"
	"github.com/davidsheshee-hash/shop-ledger/internal/config"
	"github.com/davidsheshee-hash/shop-ledger/internal/format"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
)

// SetupLogger builds the logger described by cfg and sets it as the default.
func SetupLogger(cfg config.LoggingConfig, component string, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.Format,
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewAggregator builds the aggregator for the configured time zone and
// keyword rules.
func NewAggregator(cfg *config.Config) (*stats.Aggregator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := []stats.Option{stats.WithLocation(loc)}
	if len(cfg.KeywordRules) > 0 {
		opts = append(opts, stats.WithKeywordRules(cfg.KeywordRules))
	}
	return stats.New(opts...), nil
}

// NewFormatter returns the display formatter for the configured locale and zone.
func NewFormatter(cfg *config.Config) *format.Formatter {
	f := format.New(cfg.Display.Locale)
	if loc, err := cfg.Location(); err == nil {
		f = f.In(loc)
	}
	return f
}

// OpenLedger opens the ledger on the configured storage backend.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*ledger.Store, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, result, err := backend.OpenLedger(ctx, backend.NewFactory(logger), bcfg, cfg.Storage.BlobKey,
		ledger.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("open %s ledger: %w", bcfg.Type, err)
	}
	return store, result, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
