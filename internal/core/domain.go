package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	maxDescriptionLen = 200
	maxCategoryLen    = 64
)

type (
	// TransactionType tells whether money came in or went out.
	TransactionType string

	// Transaction is a single recorded income or expense event.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		CategoryID  string          `json:"categoryId,omitempty"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}

	// TransactionDraft is what a user submits; the store assigns ID and Date.
	TransactionDraft struct {
		Type        TransactionType
		Amount      Money
		Category    string
		CategoryID  string
		Description string
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrCategoryTooLong  = errors.New("category too long (max 64 characters)")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrCategoryMismatch = errors.New("category belongs to another transaction type")
	ErrUnknownCategory  = errors.New("unknown category id")
	ErrNotFound         = errors.New("transaction not found")
	ErrBlobNotFound     = errors.New("blob not found")
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Validate checks a draft at the input boundary. Transactions that pass
// never need re-validation downstream.
func (d TransactionDraft) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	if utf8.RuneCountInString(d.Description) > maxDescriptionLen {
		return ErrDescriptionLong
	}
	return nil
}

// Aggregatable reports whether a stored record is sound enough to be counted.
// Records decoded from an old or hand-edited blob may carry zero values.
func (t Transaction) Aggregatable() bool {
	return t.Type.Valid() && !t.Date.IsZero() && !t.Amount.IsNegative()
}

// MonthKey returns the "YYYY-MM" bucket of the transaction in loc.
func (t Transaction) MonthKey(loc *time.Location) string {
	return t.Date.In(loc).Format("2006-01")
}
