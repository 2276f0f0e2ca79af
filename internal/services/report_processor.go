package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/sheets"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
)

// ReportProcessorConfig holds configuration for the report processor
type ReportProcessorConfig struct {
	// RefreshInterval is how often reports are rewritten without a change message (default: 15m)
	RefreshInterval time.Duration

	// Concurrency bounds parallel sheet writes (default: 2)
	Concurrency int

	MonthlySheet      string
	IncomeSheet       string
	ExpenseSheet      string
	TransactionsSheet string
}

// DefaultReportProcessorConfig returns sensible defaults
func DefaultReportProcessorConfig() ReportProcessorConfig {
	return ReportProcessorConfig{
		RefreshInterval:   15 * time.Minute,
		Concurrency:       2,
		MonthlySheet:      sheets.MonthlySheet,
		IncomeSheet:       sheets.IncomeSheet,
		ExpenseSheet:      sheets.ExpenseSheet,
		TransactionsSheet: sheets.TransactionsSheet,
	}
}

// ReportProcessor rewrites the spreadsheet reports from the persisted ledger
type ReportProcessor struct {
	store  *ledger.Store
	writer sheets.ReportWriter
	agg    *stats.Aggregator
	config ReportProcessorConfig
	logger *log.Logger

	refreshMu sync.Mutex

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReportProcessor creates a new report processor. A nil writer makes
// every refresh a no-op.
func NewReportProcessor(store *ledger.Store, writer sheets.ReportWriter, agg *stats.Aggregator, config ReportProcessorConfig, logger *log.Logger) *ReportProcessor {
	if agg == nil {
		agg = stats.New()
	}
	defaults := DefaultReportProcessorConfig()
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = defaults.RefreshInterval
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	return &ReportProcessor{
		store:  store,
		writer: writer,
		agg:    agg,
		config: config,
		logger: log.OrDefault(logger, log.ComponentWorker),
	}
}

// Reports derives every report from txs. Sheets with an empty name are skipped.
func (p *ReportProcessor) Reports(txs []core.Transaction) []sheets.Report {
	var out []sheets.Report
	if p.config.MonthlySheet != "" {
		out = append(out, sheets.MonthlyReport(p.config.MonthlySheet, p.agg.MonthlyStats(txs)))
	}
	if p.config.IncomeSheet != "" {
		out = append(out, sheets.CategoryReport(p.config.IncomeSheet,
			stats.Shares(p.agg.CategoryStats(txs, core.Income))))
	}
	if p.config.ExpenseSheet != "" {
		out = append(out, sheets.CategoryReport(p.config.ExpenseSheet,
			stats.Shares(p.agg.CategoryStats(txs, core.Expense))))
	}
	if p.config.TransactionsSheet != "" {
		out = append(out, sheets.TransactionsReport(p.config.TransactionsSheet, stats.NewestFirst(txs, 0)))
	}
	return out
}

// Refresh reloads the ledger and rewrites every report
func (p *ReportProcessor) Refresh(ctx context.Context) error {
	if p.writer == nil {
		return nil
	}
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if err := p.store.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	reports := p.Reports(p.store.Transactions())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)
	for _, r := range reports {
		g.Go(func() error {
			if err := p.writer.WriteReport(gctx, r); err != nil {
				return fmt.Errorf("write %s: %w", r.Sheet, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "Reports refreshed",
		log.FieldOperation, log.OpReport, log.FieldCount, len(reports), "transactions", p.store.Len())
	return nil
}

// HandleLedgerChanged refreshes reports for one change message. An error
// makes the consumer requeue the message.
func (p *ReportProcessor) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	p.logger.InfoContext(ctx, "Ledger change received",
		"action", msg.Action, log.FieldTransactionID, msg.TransactionID)
	if p.writer == nil {
		return nil
	}
	return p.Refresh(ctx)
}

// Start begins the periodic refresh loop. Returns an error if already running.
func (p *ReportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("report processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	p.logger.InfoContext(ctx, "Report processor started", "refresh_interval", p.config.RefreshInterval.String())
	return nil
}

// Stop gracefully stops the processor and waits for completion
func (p *ReportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Report processor stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Report processor stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the processor is currently running
func (p *ReportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReportProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.RefreshInterval)
	defer ticker.Stop()

	// Refresh immediately on startup
	p.refreshLogged(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshLogged(ctx)
		}
	}
}

func (p *ReportProcessor) refreshLogged(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.ErrorContext(ctx, "Periodic report refresh failed", log.FieldError, err)
	}
}
