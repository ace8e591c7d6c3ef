package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
)

// TransactionRecordedMessage announces a stored purchase. It carries the
// full transaction so consumers need no access to the store.
type TransactionRecordedMessage struct {
	TransactionID int64           `json:"transactionId"`
	CustomerID    string          `json:"customerId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          core.Date       `json:"date"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewTransactionRecordedMessage builds the message for a saved transaction.
func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		TransactionID: t.ID,
		CustomerID:    t.CustomerID,
		Amount:        t.Amount,
		Date:          t.Date,
		Timestamp:     time.Now().UTC(),
	}
}

// Transaction converts the message back into a domain transaction.
func (m *TransactionRecordedMessage) Transaction() core.Transaction {
	return core.Transaction{
		ID:         m.TransactionID,
		CustomerID: m.CustomerID,
		Amount:     m.Amount,
		Date:       m.Date,
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes and validates a message body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TransactionID <= 0 {
		return nil, errors.New("missing transaction id")
	}
	if err := msg.Transaction().Validate(); err != nil {
		return nil, fmt.Errorf("transaction %d: %w", msg.TransactionID, err)
	}
	return &msg, nil
}
