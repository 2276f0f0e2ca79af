package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidsheshee-hash/shop-ledger/internal/config"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/format"
	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, "cli", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"component":"cli"`)

	_, err = SetupLogger(config.LoggingConfig{Level: "loud"}, "cli", &buf)
	assert.Error(t, err)
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("LEDGER_STORAGE_BACKEND", "memory")
	cfg, err := LoadAndValidateConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)

	t.Setenv("LEDGER_HTTP_PORT", "nope")
	_, err = LoadAndValidateConfig("")
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestNewAggregator_UsesConfiguredRules(t *testing.T) {
	cfg := &config.Config{
		Display:      config.DisplayConfig{Timezone: "UTC"},
		KeywordRules: []stats.KeywordRule{{Keywords: []string{"茶"}, Icon: "🍵", Color: "#166534"}},
	}
	agg, err := NewAggregator(cfg)
	require.NoError(t, err)

	got := agg.CategoryStats([]core.Transaction{{
		ID: "1", Type: core.Expense, Amount: core.Money{Cents: 300}, Category: "下午茶",
		Date: time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC),
	}}, core.Expense)
	require.Len(t, got, 1)
	assert.Equal(t, "🍵", got[0].Icon)
}

func TestOpenLedger_MemoryBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "memory", BlobKey: "shop_ledger_transactions"}}
	store, result, err := OpenLedger(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer result.Cleanup()
	assert.Equal(t, 0, store.Len())
}

func TestRenderers(t *testing.T) {
	f := format.New("zh-CN").In(time.UTC)
	txs := []core.Transaction{
		{ID: "a", Type: core.Income, Amount: core.Money{Cents: 123456}, Category: "商品销售",
			Date: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)},
		{ID: "b", Type: core.Expense, Amount: core.Money{Cents: 5000}, Category: "快递物流",
			Date: time.Date(2024, 1, 16, 9, 5, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTransactions(&buf, f, txs))
	out := buf.String()
	assert.Contains(t, out, "+¥1,234.56")
	assert.Contains(t, out, "-¥50.00")
	assert.Contains(t, out, "1月15日 14:30")

	buf.Reset()
	require.NoError(t, RenderMonthly(&buf, f, stats.New(stats.WithLocation(time.UTC)).MonthlyStats(txs)))
	assert.Contains(t, buf.String(), "01.2024")
	assert.Contains(t, buf.String(), "¥1,184.56")

	buf.Reset()
	shares := stats.Shares(stats.DeriveCategoryStats(txs, core.Expense))
	require.NoError(t, RenderCategories(&buf, f, core.Expense, shares))
	assert.Contains(t, buf.String(), "Expense by category")
	assert.Contains(t, buf.String(), "100.0%")

	buf.Reset()
	require.NoError(t, RenderTotals(&buf, f, stats.ComputeTotals(txs)))
	assert.Contains(t, buf.String(), "2 transactions")

	buf.Reset()
	require.NoError(t, RenderTransactions(&buf, f, nil))
	assert.Contains(t, buf.String(), "No transactions recorded.")

	buf.Reset()
	require.NoError(t, RenderCatalog(&buf, core.DefaultCatalog().ForType(core.Income)))
	assert.Contains(t, buf.String(), "inc_sales")
}
