package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
)

type fakeBlob struct {
	mu      sync.Mutex
	data    []byte
	present bool
	saves   int
	loadErr error
	saveErr error
}

func (f *fakeBlob) load(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if !f.present {
		return nil, core.ErrBlobNotFound
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeBlob) save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = append([]byte(nil), data...)
	f.present = true
	f.saves++
	return nil
}

// port exposes the blob through plain load/save functions.
func (f *fakeBlob) port() PersistenceFuncs {
	return PersistenceFuncs{LoadFunc: f.load, SaveFunc: f.save}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func openTest(t *testing.T, blob *fakeBlob) *Store {
	t.Helper()
	s, err := Open(context.Background(), blob.port(),
		WithLogger(log.Discard()), WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	return s
}

func draft(typ core.TransactionType, cents int64, category string) core.TransactionDraft {
	return core.TransactionDraft{Type: typ, Amount: core.Money{Cents: cents}, Category: category}
}

func TestOpenMissingBlobIsEmpty(t *testing.T) {
	s := openTest(t, &fakeBlob{})
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Transactions())
}

func TestOpenUnparseableBlobIsEmpty(t *testing.T) {
	for _, data := range []string{"{not json", `{"id":"x"}`, `"text"`} {
		s := openTest(t, &fakeBlob{present: true, data: []byte(data)})
		assert.Equal(t, 0, s.Len(), data)
	}
}

func TestOpenSkipsMalformedRecords(t *testing.T) {
	blob := &fakeBlob{present: true, data: []byte(`[
		{"id":"a","type":"income","amount":12.5,"category":"商品销售","description":"","date":"2024-01-15T10:00:00Z"},
		{"id":"b","type":"expense","amount":"oops","category":"x","date":"2024-01-16T10:00:00Z"},
		42,
		{"type":"income","amount":1,"category":"no id","date":"2024-01-16T10:00:00Z"}
	]`)}
	s := openTest(t, blob)
	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "a", txs[0].ID)
	assert.Equal(t, int64(1250), txs[0].Amount.Cents)
}

func TestOpenLoadError(t *testing.T) {
	_, err := Open(context.Background(), (&fakeBlob{loadErr: errors.New("disk gone")}).port())
	assert.Error(t, err)

	_, err = Open(context.Background(), nil)
	assert.Error(t, err)
}

func TestAddPersistsAndAppends(t *testing.T) {
	blob := &fakeBlob{}
	s := openTest(t, blob)
	ctx := context.Background()

	first, err := s.Add(ctx, draft(core.Income, 10000, "商品销售"))
	require.NoError(t, err)
	assert.Equal(t, "tx-1", first.ID)
	assert.Equal(t, "inc_sales", first.CategoryID)
	assert.Equal(t, fixedClock()(), first.Date)

	second, err := s.Add(ctx, core.TransactionDraft{
		Type: core.Expense, Amount: core.Money{Cents: 3000}, Category: " 打车 ", Description: "  to the post office ",
	})
	require.NoError(t, err)
	assert.Equal(t, "打车", second.Category)
	assert.Empty(t, second.CategoryID)
	assert.Equal(t, "to the post office", second.Description)

	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-1", txs[0].ID)
	assert.Equal(t, "tx-2", txs[1].ID)
	assert.Equal(t, 2, blob.saves)

	reopened := openTest(t, blob)
	assert.Equal(t, txs, reopened.Transactions())
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	blob := &fakeBlob{}
	s := openTest(t, blob)
	ctx := context.Background()

	_, err := s.Add(ctx, draft(core.Income, 0, "商品销售"))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = s.Add(ctx, draft(core.Income, 100, ""))
	assert.ErrorIs(t, err, core.ErrEmptyCategory)
	_, err = s.Add(ctx, draft("gift", 100, "x"))
	assert.ErrorIs(t, err, core.ErrInvalidType)
	_, err = s.Add(ctx, core.TransactionDraft{Type: core.Income, Amount: core.Money{Cents: 1}, CategoryID: "exp_stock"})
	assert.ErrorIs(t, err, core.ErrCategoryMismatch)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, blob.saves)
}

func TestSaveFailureLeavesCollectionUnchanged(t *testing.T) {
	blob := &fakeBlob{}
	s := openTest(t, blob)
	ctx := context.Background()
	tx, err := s.Add(ctx, draft(core.Income, 100, "商品销售"))
	require.NoError(t, err)

	blob.saveErr = errors.New("quota exceeded")
	_, err = s.Add(ctx, draft(core.Income, 200, "商品销售"))
	assert.Error(t, err)
	_, err = s.Delete(ctx, tx.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestDelete(t *testing.T) {
	blob := &fakeBlob{}
	s := openTest(t, blob)
	ctx := context.Background()
	a, _ := s.Add(ctx, draft(core.Income, 100, "商品销售"))
	b, _ := s.Add(ctx, draft(core.Expense, 50, "快递物流"))

	removed, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, b.ID, txs[0].ID)

	_, err = s.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	got, err := s.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestTransactionsIsACopy(t *testing.T) {
	s := openTest(t, &fakeBlob{})
	_, err := s.Add(context.Background(), draft(core.Income, 100, "商品销售"))
	require.NoError(t, err)

	snapshot := s.Transactions()
	snapshot[0].Category = "changed"
	assert.Equal(t, "商品销售", s.Transactions()[0].Category)
}

func TestExport(t *testing.T) {
	s := openTest(t, &fakeBlob{})
	_, err := s.Add(context.Background(), draft(core.Income, 1050, "商品销售"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "tx-1", out[0]["id"])
	assert.Equal(t, 10.5, out[0]["amount"])
	assert.Equal(t, "income", out[0]["type"])

	empty := openTest(t, &fakeBlob{})
	buf.Reset()
	require.NoError(t, empty.Export(&buf))
	assert.JSONEq(t, "[]", buf.String())
}

func TestConcurrentAdds(t *testing.T) {
	s, err := Open(context.Background(), (&fakeBlob{}).port(), WithLogger(log.Discard()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(context.Background(), draft(core.Expense, 100, "进货成本"))
			assert.NoError(t, err)
			_ = s.Transactions()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}

func TestReload(t *testing.T) {
	blob := &fakeBlob{}
	s := openTest(t, blob)
	other := openTest(t, blob)

	_, err := other.Add(context.Background(), draft(core.Income, 100, "商品销售"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, 1, s.Len())
}

func TestAddKeepsEncounterOrderForCategoryTies(t *testing.T) {
	blob := &fakeBlob{present: true, data: []byte(`[
		{"id":"old1","type":"expense","amount":5,"category":"房租","date":"2024-01-01T10:00:00Z"},
		{"id":"old2","type":"expense","amount":5,"category":"打车","date":"2024-01-02T10:00:00Z"}
	]`)}
	s := openTest(t, blob)

	_, err := s.Add(context.Background(), draft(core.Expense, 500, "午餐"))
	require.NoError(t, err)

	txs := s.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, []string{"old1", "old2", "tx-1"}, []string{txs[0].ID, txs[1].ID, txs[2].ID})

	got := stats.DeriveCategoryStats(txs, core.Expense)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"房租", "打车", "午餐"}, []string{got[0].Name, got[1].Name, got[2].Name})

	persisted, _, err := Decode(blob.data)
	require.NoError(t, err)
	assert.Equal(t, "old1", persisted[0].ID)
	assert.Equal(t, "tx-1", persisted[2].ID)
}
