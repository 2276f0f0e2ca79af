package stats

import (
	"math"
	"sort"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// ComputeTotals sums every countable transaction.
func ComputeTotals(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		if !tx.Aggregatable() {
			continue
		}
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
		t.Count++
	}
	t.Profit = t.Income.Sub(t.Expense)
	return t
}

// Shares attaches to every stat its percentage of the summed values, rounded
// to one decimal. A zero total yields zero percentages.
func Shares(stats []core.CategoryStat) []core.CategoryShare {
	var total int64
	for _, s := range stats {
		total += s.Value.Cents
	}
	out := make([]core.CategoryShare, len(stats))
	for i, s := range stats {
		out[i] = core.CategoryShare{CategoryStat: s}
		if total == 0 {
			continue
		}
		pct := float64(s.Value.Cents) * 100 / float64(total)
		out[i].Percent = math.Round(pct*10) / 10
	}
	return out
}

// NewestFirst returns a copy of txs ordered by date, newest first. A limit
// above zero truncates the result.
func NewestFirst(txs []core.Transaction, limit int) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
