// Package stats derives chart data from a transaction collection.
//
// Every function here is a pure recomputation over the slice it is given.
// Records that cannot be counted (unknown type, missing date, negative
// amount) are skipped instead of failing the whole derivation. Negative
// amounts only reach a blob by hand editing, since input validation
// rejects them; such records are left out of every sum, so the totals
// equal the sums of the countable records only.
//
// Category names resolve against the catalog entries of the requested
// type only. An income record named like an expense category gets the
// keyword fallback, not the expense category's icon.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// Aggregator holds the lookups used while deriving stats.
type Aggregator struct {
	catalog  *core.Catalog
	rules    []KeywordRule
	fallback Appearance
	loc      *time.Location
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCatalog replaces the built-in category catalog.
func WithCatalog(c *core.Catalog) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithKeywordRules replaces the fallback icon rules. An empty table sends
// every unmatched category to the fallback appearance.
func WithKeywordRules(rules []KeywordRule) Option {
	return func(a *Aggregator) {
		a.rules = append([]KeywordRule(nil), rules...)
	}
}

// WithFallback sets the appearance used when no rule matches.
func WithFallback(ap Appearance) Option {
	return func(a *Aggregator) { a.fallback = ap }
}

// WithLocation sets the time zone months are bucketed in.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New returns an Aggregator using the built-in catalog and keyword rules
// unless overridden.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:  core.DefaultCatalog(),
		rules:    DefaultKeywordRules(),
		fallback: DefaultFallback,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DeriveMonthlyStats derives one MonthlyStat per month present in txs,
// ascending by month, using the default Aggregator.
func DeriveMonthlyStats(txs []core.Transaction) []core.MonthlyStat {
	return New().MonthlyStats(txs)
}

// DeriveCategoryStats derives per-category totals for one type, using the
// default Aggregator.
func DeriveCategoryStats(txs []core.Transaction, t core.TransactionType) []core.CategoryStat {
	return New().CategoryStats(txs, t)
}

// MonthlyStats groups txs by calendar month and sums income and expense.
func (a *Aggregator) MonthlyStats(txs []core.Transaction) []core.MonthlyStat {
	byMonth := make(map[string]*core.MonthlyStat)
	for _, tx := range txs {
		if !tx.Aggregatable() {
			continue
		}
		key := tx.MonthKey(a.loc)
		m, ok := byMonth[key]
		if !ok {
			m = &core.MonthlyStat{MonthKey: key, Label: monthLabel(key)}
			byMonth[key] = m
		}
		switch tx.Type {
		case core.Income:
			m.Income = m.Income.Add(tx.Amount)
		case core.Expense:
			m.Expense = m.Expense.Add(tx.Amount)
		}
	}

	out := make([]core.MonthlyStat, 0, len(byMonth))
	for _, m := range byMonth {
		m.Profit = m.Income.Sub(m.Expense)
		out = append(out, *m)
	}
	// "YYYY-MM" sorts chronologically as a string.
	sort.Slice(out, func(i, j int) bool { return out[i].MonthKey < out[j].MonthKey })
	return out
}

// CategoryStats sums txs of type t per category name, largest first.
// Equal values keep first-encounter order.
func (a *Aggregator) CategoryStats(txs []core.Transaction, t core.TransactionType) []core.CategoryStat {
	index := make(map[string]int)
	out := make([]core.CategoryStat, 0)
	for _, tx := range txs {
		if tx.Type != t || !tx.Aggregatable() {
			continue
		}
		name := strings.TrimSpace(tx.Category)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].Value = out[i].Value.Add(tx.Amount)
			continue
		}
		ap := a.appearance(tx, name)
		index[name] = len(out)
		out = append(out, core.CategoryStat{
			Name:  name,
			Value: tx.Amount,
			Icon:  ap.Icon,
			Color: ap.Color,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.Cents > out[j].Value.Cents })
	return out
}

func (a *Aggregator) appearance(tx core.Transaction, name string) Appearance {
	tx.Category = name
	if def, ok := a.catalog.Resolve(tx); ok {
		return Appearance{Icon: def.Icon, Color: def.Color}
	}
	return MatchKeyword(a.rules, name, a.fallback)
}

func monthLabel(key string) string {
	// key is always "YYYY-MM"
	return key[5:7] + "." + key[0:4]
}
