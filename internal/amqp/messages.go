package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pocket/internal/core"
)

// EventKind names what happened to a transaction.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case TransactionCreated, TransactionUpdated, TransactionDeleted:
		return true
	}
	return false
}

// TransactionEvent carries the full record so consumers never need to read
// the store. For deletions it is the record as it was before removal.
type TransactionEvent struct {
	Kind        EventKind        `json:"kind"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time
func NewTransactionEvent(kind EventKind, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Kind:        kind,
		Transaction: t,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

var errMalformedEvent = errors.New("malformed transaction event")

// TransactionEventFromJSON decodes and sanity-checks an event
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", errMalformedEvent, e.Kind)
	}
	if e.Transaction.ID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", errMalformedEvent)
	}
	return &e, nil
}
