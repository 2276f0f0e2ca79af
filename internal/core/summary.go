package core

// MonthlyStat aggregates one calendar month. Profit is always Income minus Expense.
type MonthlyStat struct {
	MonthKey string `json:"monthKey"`
	Label    string `json:"label"`
	Income   Money  `json:"income"`
	Expense  Money  `json:"expense"`
	Profit   Money  `json:"profit"`
}

// CategoryStat aggregates one category within one transaction type.
type CategoryStat struct {
	Name  string `json:"name"`
	Value Money  `json:"value"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CategoryShare is a CategoryStat with its share of the type total in percent.
type CategoryShare struct {
	CategoryStat
	Percent float64 `json:"percent"`
}

// Totals summarises the whole collection.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Profit  Money `json:"profit"`
	Count   int   `json:"count"`
}
