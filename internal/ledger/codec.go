package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// Encode serializes the collection as a JSON array.
func Encode(txs []core.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return json.Marshal(txs)
}

// Decode parses a blob. Records that fail to decode are skipped and counted,
// so one bad entry does not cost the whole collection. An error is returned
// only when the blob is not a JSON array at all.
func Decode(data []byte) ([]core.Transaction, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []core.Transaction{}, 0, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode ledger blob: %w", err)
	}
	txs := make([]core.Transaction, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		var tx core.Transaction
		if err := json.Unmarshal(r, &tx); err != nil || tx.ID == "" {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}
