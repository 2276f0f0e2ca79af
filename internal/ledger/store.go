// Package ledger holds the transaction collection.
//
// The Store keeps every transaction in memory and mirrors the full
// collection to a Persistence blob after each mutation. Readers get a
// copy, so aggregation never races with add or delete.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
)

const (
	// DefaultBlobKey names the persisted collection.
	DefaultBlobKey = "shop_ledger_transactions"
	// ExportFileName is the suggested file name for a full export.
	ExportFileName = "ledger_backup.json"
)

// Store is the owned transaction collection.
type Store struct {
	mu      sync.RWMutex
	txs     []core.Transaction
	persist Persistence
	catalog *core.Catalog
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = log.OrDefault(l, log.ComponentLedger) }
}

func WithCatalog(c *core.Catalog) Option {
	return func(s *Store) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open creates a Store and loads the persisted collection. A missing blob
// gives an empty collection, and so does a blob that cannot be parsed.
// Only a failing Load is reported as an error.
func Open(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, errors.New("ledger: persistence is required")
	}
	s := &Store{
		persist: p,
		catalog: core.DefaultCatalog(),
		logger:  log.OrDefault(nil, log.ComponentLedger),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted one.
func (s *Store) Reload(ctx context.Context) error {
	data, err := s.persist.Load(ctx)
	if errors.Is(err, core.ErrBlobNotFound) {
		s.replace(nil)
		s.logger.DebugContext(ctx, "No persisted ledger, starting empty", log.FieldOperation, log.OpLoad)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	txs, skipped, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted ledger is unreadable, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		s.replace(nil)
		return nil
	}
	if skipped > 0 {
		s.logger.WarnContext(ctx, "Skipped malformed transactions in persisted ledger",
			log.FieldOperation, log.OpLoad, "skipped", skipped)
	}
	s.replace(txs)
	s.logger.DebugContext(ctx, "Ledger loaded", log.FieldOperation, log.OpLoad, log.FieldCount, len(txs))
	return nil
}

func (s *Store) replace(txs []core.Transaction) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	s.mu.Lock()
	s.txs = txs
	s.mu.Unlock()
}

// Add validates the draft, stamps it with a fresh id and the current time,
// and appends it to the collection.
func (s *Store) Add(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	d, err := s.catalog.Bind(d)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          s.newID(),
		Type:        d.Type,
		Amount:      d.Amount,
		Category:    strings.TrimSpace(d.Category),
		CategoryID:  d.CategoryID,
		Description: strings.TrimSpace(d.Description),
		Date:        s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, 0, len(s.txs)+1)
	next = append(next, s.txs...)
	next = append(next, tx)
	if err := s.save(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next

	s.logger.InfoContext(ctx, "Transaction recorded", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(tx.ID, tx.Type.String(), tx.Amount.Cents, tx.Category).
		ToSlice()...)
	return tx, nil
}

// Delete removes the transaction with the given id.
func (s *Store) Delete(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, tx := range s.txs {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	removed := s.txs[idx]

	next := make([]core.Transaction, 0, len(s.txs)-1)
	next = append(next, s.txs[:idx]...)
	next = append(next, s.txs[idx+1:]...)
	if err := s.save(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	return removed, nil
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, txs []core.Transaction) error {
	data, err := Encode(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.persist.Save(ctx, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Transactions returns a copy of the collection in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Catalog returns the category catalog drafts are bound against.
func (s *Store) Catalog() *core.Catalog {
	return s.catalog
}

// Export writes the whole collection as indented JSON.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Transactions()); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	return nil
}
