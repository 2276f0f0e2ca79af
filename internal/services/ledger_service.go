package services

import (
	"context"
	"fmt"
	"io"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
)

// Publisher announces ledger changes to other processes
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService orchestrates ledger mutations, change notifications and
// the derived views the outer surfaces display
type LedgerService struct {
	store     *ledger.Store
	publisher Publisher
	agg       *stats.Aggregator
	logger    *log.Logger
	closers   []io.Closer
}

// NewLedgerService wires a store to an optional publisher. A nil
// aggregator uses the defaults.
func NewLedgerService(store *ledger.Store, publisher Publisher, agg *stats.Aggregator, logger *log.Logger) *LedgerService {
	if agg == nil {
		agg = stats.New(stats.WithCatalog(store.Catalog()))
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		agg:       agg,
		logger:    log.OrDefault(logger, log.ComponentLedger),
	}
}

// OnClose registers resources released by Close, in reverse order
func (s *LedgerService) OnClose(c io.Closer) {
	if c != nil {
		s.closers = append(s.closers, c)
	}
}

// Record saves a transaction and publishes a change message.
// Publishing failures are logged and do not fail the call.
func (s *LedgerService) Record(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	tx, err := s.store.Add(ctx, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	msg := amqp.NewLedgerChangedMessage(amqp.ActionCreated, tx.ID, s.store.Len())
	msg.TransactionType = tx.Type.String()
	msg.AmountCents = tx.Amount.Cents
	s.publish(ctx, msg)
	return tx, nil
}

// Remove deletes a transaction by id and publishes a change message
func (s *LedgerService) Remove(ctx context.Context, id string) error {
	tx, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	msg := amqp.NewLedgerChangedMessage(amqp.ActionDeleted, tx.ID, s.store.Len())
	msg.TransactionType = tx.Type.String()
	msg.AmountCents = tx.Amount.Cents
	s.publish(ctx, msg)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerChangedMessage) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping change message", "action", msg.Action)
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		// The ledger is already saved locally
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			"action", msg.Action, log.FieldTransactionID, msg.TransactionID, log.FieldError, err)
	}
}

// Recent returns transactions newest first; limit <= 0 returns all
func (s *LedgerService) Recent(limit int) []core.Transaction {
	return stats.NewestFirst(s.store.Transactions(), limit)
}

// Get returns one transaction
func (s *LedgerService) Get(id string) (core.Transaction, error) {
	return s.store.Get(id)
}

// Monthly derives the monthly series from the current collection
func (s *LedgerService) Monthly() []core.MonthlyStat {
	return s.agg.MonthlyStats(s.store.Transactions())
}

// Categories derives per-category totals with shares for one type
func (s *LedgerService) Categories(t core.TransactionType) []core.CategoryShare {
	return stats.Shares(s.agg.CategoryStats(s.store.Transactions(), t))
}

// Totals sums the whole collection
func (s *LedgerService) Totals() core.Totals {
	return stats.ComputeTotals(s.store.Transactions())
}

// Catalog returns the category definitions, for one type or all when t is empty
func (s *LedgerService) Catalog(t core.TransactionType) []core.CategoryDef {
	if t == "" {
		return s.store.Catalog().All()
	}
	return s.store.Catalog().ForType(t)
}

// Export writes the full collection as JSON
func (s *LedgerService) Export(w io.Writer) error {
	return s.store.Export(w)
}

// Close releases registered resources
func (s *LedgerService) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
