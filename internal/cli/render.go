package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/format"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

func typeStyle(t core.TransactionType) lipgloss.Style {
	if t == core.Income {
		return IncomeStyle
	}
	return ExpenseStyle
}

// RenderTransactions writes txs as a table, one signed amount per row.
func RenderTransactions(w io.Writer, f *format.Formatter, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions recorded."))
		return err
	}
	t := newTable("Date", "Category", "Amount", "Description", "ID")
	for _, tx := range txs {
		t.Row(
			f.DateTime(tx.Date),
			tx.Category,
			typeStyle(tx.Type).Render(f.Signed(tx.Type, tx.Amount)),
			tx.Description,
			tx.ID,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderMonthly writes the monthly series, oldest first.
func RenderMonthly(w io.Writer, f *format.Formatter, stats []core.MonthlyStat) error {
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No data for the monthly trend."))
		return err
	}
	t := newTable("Month", "Income", "Expense", "Profit")
	for _, s := range stats {
		profit := IncomeStyle
		if s.Profit.IsNegative() {
			profit = ExpenseStyle
		}
		t.Row(s.Label, f.Currency(s.Income), f.Currency(s.Expense), profit.Render(f.Currency(s.Profit)))
	}
	_, err := fmt.Fprintln(w, FormatTitle("Monthly trend")+"\n"+t.Render())
	return err
}

// RenderCategories writes the category breakdown of one type.
func RenderCategories(w io.Writer, f *format.Formatter, t core.TransactionType, shares []core.CategoryShare) error {
	title := "Income by category"
	if t == core.Expense {
		title = "Expense by category"
	}
	if len(shares) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No "+t.String()+" recorded."))
		return err
	}
	tbl := newTable("", "Category", "Amount", "Share")
	for _, s := range shares {
		tbl.Row(
			lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(s.Icon),
			s.Name,
			f.Currency(s.Value),
			strconv.FormatFloat(s.Percent, 'f', 1, 64)+"%",
		)
	}
	_, err := fmt.Fprintln(w, FormatTitle(title)+"\n"+tbl.Render())
	return err
}

// RenderTotals writes the overview box.
func RenderTotals(w io.Writer, f *format.Formatter, totals core.Totals) error {
	profit := IncomeStyle
	if totals.Profit.IsNegative() {
		profit = ExpenseStyle
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		"Income   "+IncomeStyle.Render(f.Currency(totals.Income)),
		"Expense  "+ExpenseStyle.Render(f.Currency(totals.Expense)),
		"Profit   "+profit.Render(f.Currency(totals.Profit)),
		SubtleStyle.Render(fmt.Sprintf("%d transactions", totals.Count)),
	)
	_, err := fmt.Fprintln(w, RenderBox(ChartIcon+" Overview", body))
	return err
}

// RenderCatalog lists the built-in categories.
func RenderCatalog(w io.Writer, defs []core.CategoryDef) error {
	t := newTable("", "ID", "Name", "Type")
	for _, d := range defs {
		t.Row(d.Icon, d.ID, d.Name, typeStyle(d.Type).Render(d.Type.String()))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
