package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" Income ")
	assert.NoError(t, err)
	assert.Equal(t, Income, got)

	got, err = ParseTransactionType("expense")
	assert.NoError(t, err)
	assert.Equal(t, Expense, got)

	_, err = ParseTransactionType("transfer")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestTransactionDraftValidate(t *testing.T) {
	valid := TransactionDraft{Type: Income, Amount: Money{Cents: 100}, Category: "商品销售"}
	tests := []struct {
		name    string
		mutate  func(d *TransactionDraft)
		wantErr error
	}{
		{"valid", func(d *TransactionDraft) {}, nil},
		{"bad type", func(d *TransactionDraft) { d.Type = "gift" }, ErrInvalidType},
		{"zero amount", func(d *TransactionDraft) { d.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(d *TransactionDraft) { d.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"blank category", func(d *TransactionDraft) { d.Category = "   " }, ErrEmptyCategory},
		{"long category", func(d *TransactionDraft) { d.Category = strings.Repeat("货", 65) }, ErrCategoryTooLong},
		{"long description", func(d *TransactionDraft) { d.Description = strings.Repeat("x", 201) }, ErrDescriptionLong},
		{"max description", func(d *TransactionDraft) { d.Description = strings.Repeat("说", 200) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransactionAggregatable(t *testing.T) {
	when := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.True(t, Transaction{Type: Income, Amount: Money{Cents: 1}, Date: when}.Aggregatable())
	assert.True(t, Transaction{Type: Expense, Date: when}.Aggregatable())
	assert.False(t, Transaction{Type: "", Amount: Money{Cents: 1}, Date: when}.Aggregatable())
	assert.False(t, Transaction{Type: Income, Amount: Money{Cents: 1}}.Aggregatable())
	assert.False(t, Transaction{Type: Income, Amount: Money{Cents: -1}, Date: when}.Aggregatable())
}

func TestTransactionMonthKey(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	tx := Transaction{Date: time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2024-01", tx.MonthKey(time.UTC))
	assert.Equal(t, "2024-02", tx.MonthKey(shanghai))
}
