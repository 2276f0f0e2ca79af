package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Ledger change actions
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
	ActionRefresh = "refresh"
)

// LedgerChangedMessage announces that the persisted ledger was rewritten.
// It carries only what changed; consumers reload the blob for the full state.
type LedgerChangedMessage struct {
	Action          string    `json:"action"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	TransactionType string    `json:"transaction_type,omitempty"`
	AmountCents     int64     `json:"amount_cents,omitempty"`
	Count           int       `json:"count"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time
func NewLedgerChangedMessage(action, transactionID string, count int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Action:        action,
		TransactionID: transactionID,
		Count:         count,
		Timestamp:     time.Now(),
	}
}

// Validate rejects messages with an unknown action
func (m *LedgerChangedMessage) Validate() error {
	switch m.Action {
	case ActionCreated, ActionDeleted:
		if m.TransactionID == "" {
			return fmt.Errorf("%s message without transaction id", m.Action)
		}
	case ActionRefresh:
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON parses and validates a message
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
