package sheets

import (
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// Default sheet names
const (
	MonthlySheet        = "Monthly"
	IncomeSheet         = "Income by category"
	ExpenseSheet        = "Expense by category"
	TransactionsSheet   = "Transactions"
	transactionsDateFmt = "2006-01-02 15:04"
)

// MonthlyReport lays out the monthly series, one row per month.
func MonthlyReport(sheet string, stats []core.MonthlyStat) Report {
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []any{s.MonthKey, s.Label, s.Income.String(), s.Expense.String(), s.Profit.String()})
	}
	return Report{
		Sheet:  sheet,
		Header: []string{"Month", "Label", "Income", "Expense", "Profit"},
		Rows:   rows,
	}
}

// CategoryReport lays out per-category totals with their share of the total.
func CategoryReport(sheet string, shares []core.CategoryShare) Report {
	rows := make([][]any, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []any{s.Icon, s.Name, s.Value.String(), s.Percent})
	}
	return Report{
		Sheet:  sheet,
		Header: []string{"Icon", "Category", "Amount", "Share %"},
		Rows:   rows,
	}
}

// TransactionsReport lists transactions as given.
func TransactionsReport(sheet string, txs []core.Transaction) Report {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date.Format(transactionsDateFmt), string(tx.Type), tx.Category, tx.Amount.String(), tx.Description, tx.ID,
		})
	}
	return Report{
		Sheet:  sheet,
		Header: []string{"Date", "Type", "Category", "Amount", "Description", "ID"},
		Rows:   rows,
	}
}
