package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

func TestComputeTotals(t *testing.T) {
	got := ComputeTotals(exampleTransactions())
	assert.Equal(t, core.Totals{Income: yuan(150), Expense: yuan(30), Profit: yuan(120), Count: 3}, got)

	assert.Equal(t, core.Totals{}, ComputeTotals(nil))

	loss := ComputeTotals([]core.Transaction{
		{Type: core.Expense, Amount: yuan(40), Category: "进货成本", Date: day(2024, 5, 1)},
	})
	assert.Equal(t, int64(-4000), loss.Profit.Cents)
}

func TestShares(t *testing.T) {
	stats := []core.CategoryStat{
		{Name: "a", Value: yuan(2)},
		{Name: "b", Value: yuan(1)},
	}
	got := Shares(stats)
	require.Len(t, got, 2)
	assert.Equal(t, 66.7, got[0].Percent)
	assert.Equal(t, 33.3, got[1].Percent)
	assert.Equal(t, "a", got[0].Name)

	zero := Shares([]core.CategoryStat{{Name: "a"}})
	assert.Equal(t, 0.0, zero[0].Percent)

	assert.Empty(t, Shares(nil))
}

func TestNewestFirst(t *testing.T) {
	txs := exampleTransactions()
	got := NewestFirst(txs, 0)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	got = NewestFirst(txs, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)

	same := []core.Transaction{
		{ID: "x", Date: time.Unix(100, 0)},
		{ID: "y", Date: time.Unix(100, 0)},
	}
	got = NewestFirst(same, 10)
	assert.Equal(t, "x", got[0].ID)
}

func TestMatchKeyword(t *testing.T) {
	rules := DefaultKeywordRules()
	assert.Equal(t, "🍔", MatchKeyword(rules, "早餐", DefaultFallback).Icon)
	assert.Equal(t, "🚕", MatchKeyword(rules, "出行", DefaultFallback).Icon)
	assert.Equal(t, DefaultFallback, MatchKeyword(rules, "兼职收入", DefaultFallback))
	assert.Equal(t, DefaultFallback, MatchKeyword(nil, "午餐", DefaultFallback))
}
