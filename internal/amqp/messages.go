package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/models"
)

// Action names the kind of change a TransactionEvent reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent announces a committed change to a transaction. For
// deletions Transaction holds the removed record.
type TransactionEvent struct {
	Action      Action             `json:"action"`
	Transaction models.Transaction `json:"transaction"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(action Action, tx models.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:      action,
		Transaction: tx,
		OccurredAt:  time.Now(),
	}
}

// RoutingKey returns the topic routing key, e.g. "transaction.created".
func (e *TransactionEvent) RoutingKey() string {
	return "transaction." + string(e.Action)
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
