package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidsheshee-hash/shop-ledger/internal/amqp"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
	"github.com/davidsheshee-hash/shop-ledger/internal/storage"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.LedgerChangedMessage
	err  error
}

func (f *fakePublisher) PublishLedgerChanged(_ context.Context, msg *amqp.LedgerChangedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newStore(t *testing.T, blobs storage.BlobStore) *ledger.Store {
	t.Helper()
	times := []time.Time{
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	n := 0
	clock := func() time.Time {
		ts := times[n%len(times)]
		n++
		return ts
	}
	ids := 0
	s, err := ledger.Open(context.Background(), storage.Bind(blobs, ledger.DefaultBlobKey),
		ledger.WithLogger(log.Discard()),
		ledger.WithClock(clock),
		ledger.WithIDGenerator(func() string { ids++; return fmt.Sprintf("tx-%d", ids) }))
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, svc *LedgerService) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []core.TransactionDraft{
		{Type: core.Income, Amount: core.Money{Cents: 10000}, Category: "商品销售"},
		{Type: core.Expense, Amount: core.Money{Cents: 3000}, Category: "快递物流"},
		{Type: core.Income, Amount: core.Money{Cents: 5000}, Category: "商品销售"},
	} {
		_, err := svc.Record(ctx, d)
		require.NoError(t, err)
	}
}

func utcAggregator() *stats.Aggregator {
	return stats.New(stats.WithLocation(time.UTC))
}

func TestLedgerServiceRecordPublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), pub, utcAggregator(), log.Discard())
	seed(t, svc)

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, amqp.ActionCreated, pub.msgs[0].Action)
	assert.Equal(t, "tx-1", pub.msgs[0].TransactionID)
	assert.Equal(t, "income", pub.msgs[0].TransactionType)
	assert.Equal(t, int64(10000), pub.msgs[0].AmountCents)
	assert.Equal(t, 3, pub.msgs[2].Count)

	require.NoError(t, svc.Remove(context.Background(), "tx-2"))
	require.Len(t, pub.msgs, 4)
	assert.Equal(t, amqp.ActionDeleted, pub.msgs[3].Action)
	assert.Equal(t, 2, pub.msgs[3].Count)
}

func TestLedgerServicePublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), pub, nil, log.Discard())

	tx, err := svc.Record(context.Background(), core.TransactionDraft{
		Type: core.Income, Amount: core.Money{Cents: 100}, Category: "商品销售",
	})
	require.NoError(t, err)
	got, err := svc.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestLedgerServiceWithoutPublisher(t *testing.T) {
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), nil, nil, nil)
	seed(t, svc)
	assert.Len(t, svc.Recent(0), 3)
}

func TestLedgerServiceErrors(t *testing.T) {
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), nil, nil, log.Discard())
	_, err := svc.Record(context.Background(), core.TransactionDraft{Type: core.Income, Category: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	err = svc.Remove(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLedgerServiceViews(t *testing.T) {
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), nil, utcAggregator(), log.Discard())
	seed(t, svc)

	recent := svc.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "tx-3", recent[0].ID)

	monthly := svc.Monthly()
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].MonthKey)
	assert.Equal(t, int64(7000), monthly[0].Profit.Cents)

	income := svc.Categories(core.Income)
	require.Len(t, income, 1)
	assert.Equal(t, int64(15000), income[0].Value.Cents)
	assert.Equal(t, 100.0, income[0].Percent)

	totals := svc.Totals()
	assert.Equal(t, int64(12000), totals.Profit.Cents)
	assert.Equal(t, 3, totals.Count)

	assert.Len(t, svc.Catalog(""), 10)
	assert.Len(t, svc.Catalog(core.Expense), 6)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf))
	assert.Contains(t, buf.String(), `"tx-1"`)
}

func TestLedgerServiceClose(t *testing.T) {
	svc := NewLedgerService(newStore(t, storage.NewMemoryBlobStore()), nil, nil, log.Discard())
	var order []string
	svc.OnClose(closerFunc(func() error { order = append(order, "first"); return nil }))
	svc.OnClose(closerFunc(func() error { order = append(order, "second"); return errors.New("boom") }))
	svc.OnClose(nil)

	err := svc.Close()
	require.Error(t, err)
	assert.Equal(t, []string{"second", "first"}, order)
}
