// Package events defines the domain events emitted after a fund request or
// user account changes state.
package events

import (
	"time"

	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/google/uuid"
)

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	EventTypeTransactionSubmitted EventType = "Transaction.Submitted"
	EventTypeTransactionDecided   EventType = "Transaction.Decided"
	EventTypeUserRegistered       EventType = "User.Registered"
)

func (t EventType) String() string { return string(t) }

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// TransactionSubmitted is emitted once a fund request has been stored as Pending.
type TransactionSubmitted struct {
	Transaction transaction.Transaction `json:"transaction"`
	OccurredAt  time.Time               `json:"occurredAt"`
}

func (TransactionSubmitted) Type() string { return EventTypeTransactionSubmitted.String() }

// TransactionDecided is emitted once an admin decision has been committed.
type TransactionDecided struct {
	Transaction transaction.Transaction `json:"transaction"`
	OccurredAt  time.Time               `json:"occurredAt"`
}

func (TransactionDecided) Type() string { return EventTypeTransactionDecided.String() }

// UserRegistered is emitted after a new account is created.
type UserRegistered struct {
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (UserRegistered) Type() string { return EventTypeUserRegistered.String() }

// EventTypes maps a type name to a constructor, used to decode events read
// back from a broker.
var EventTypes = map[string]func() Event{
	EventTypeTransactionSubmitted.String(): func() Event { return &TransactionSubmitted{} },
	EventTypeTransactionDecided.String():   func() Event { return &TransactionDecided{} },
	EventTypeUserRegistered.String():       func() Event { return &UserRegistered{} },
}
