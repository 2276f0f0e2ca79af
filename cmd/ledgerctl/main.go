package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/backend"
	"github.com/davidsheshee-hash/shop-ledger/internal/cli"
	"github.com/davidsheshee-hash/shop-ledger/internal/config"
	"github.com/davidsheshee-hash/shop-ledger/internal/format"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/services"
)

// app carries what initConfig resolves for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Shop ledger from the command line",
		Long: `ledgerctl records shop income and expenses and prints the same
monthly trend, category breakdown and totals the dashboard shows.

Settings come from ledger.yaml, LEDGER_* environment variables and flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./ledger.yaml or $HOME/.config/shop-ledger/ledger.yaml)")
	flags.String("backend", "", "storage backend (sqlite, file, memory)")
	flags.String("db", "", "sqlite database path")
	flags.String("data-dir", "", "directory for the file backend")
	flags.String("locale", "", "display locale (zh-CN, en-US)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(addCmd(a))
	root.AddCommand(deleteCmd(a))
	root.AddCommand(listCmd(a))
	root.AddCommand(statsCmd(a))
	root.AddCommand(categoriesCmd(a))
	root.AddCommand(exportCmd(a))
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so table output stays clean.
	logger, err := cli.SetupLogger(cfg.Logging, log.ComponentCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// bindFlags lets set flags override the file and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"storage.backend":     "backend",
		"storage.sqlite_path": "db",
		"storage.file_dir":    "data-dir",
		"display.locale":      "locale",
		"logging.level":       "log-level",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// session is an open ledger plus whatever must be released after the command.
type session struct {
	svc       *services.LedgerService
	formatter *format.Formatter
	backend   *backend.BackendResult
	logger    *log.Logger
}

func (a *app) open(ctx context.Context) (*session, error) {
	agg, err := cli.NewAggregator(a.cfg)
	if err != nil {
		return nil, err
	}
	store, result, err := cli.OpenLedger(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	var client *amqp.Client
	if a.cfg.AMQP.Enabled() {
		client, err = amqp.NewClient(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange, a.cfg.AMQP.Queue, a.logger)
		if err != nil {
			a.logger.Warn("Failed to initialize AMQP client, reports will refresh on schedule", log.FieldError, err)
		} else {
			publisher = client
		}
	}

	svc := services.NewLedgerService(store, publisher, agg, a.logger)
	if client != nil {
		svc.OnClose(client)
	}
	return &session{
		svc:       svc,
		formatter: cli.NewFormatter(a.cfg),
		backend:   result,
		logger:    a.logger,
	}, nil
}

func (s *session) Close() {
	if err := s.svc.Close(); err != nil {
		s.logger.Error("Failed to close ledger service", log.FieldError, err)
	}
	if err := s.backend.Cleanup(); err != nil {
		s.logger.Error("Failed to close storage", log.FieldError, err)
	}
}
