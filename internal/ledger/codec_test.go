package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

func TestEncodeNil(t *testing.T) {
	b, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestDecodeEncoded(t *testing.T) {
	when := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	txs := []core.Transaction{{
		ID: "a", Type: core.Expense, Amount: core.Money{Cents: 999}, Category: "进货成本",
		CategoryID: "exp_stock", Description: "boxes", Date: when,
	}}
	b, err := Encode(txs)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":9.99`)
	assert.Contains(t, string(b), `"categoryId":"exp_stock"`)

	got, skipped, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(when))
	assert.Equal(t, txs[0].Amount, got[0].Amount)
}

func TestDecodeEdgeCases(t *testing.T) {
	got, _, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, _, err = Decode([]byte(" null "))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, _, err = Decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)

	got, skipped, err := Decode([]byte(`[{"id":"x","type":"income","amount":null,"date":"2024-01-01T00:00:00Z"}, "bad"]`))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.IsZero())
}
