// Package audit records every domain event in the structured log.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/eventbus"
)

// Handle returns a handler that writes one audit line per event.
func Handle(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "audit.Handle", "event_type", e.Type())
		switch evt := deref(e).(type) {
		case events.TransactionSubmitted:
			log.InfoContext(ctx, "Fund request submitted",
				"transactionID", evt.Transaction.ID,
				"submittedBy", evt.Transaction.SubmittedBy,
				"utr", evt.Transaction.UTRNumber,
				"occurredAt", evt.OccurredAt,
			)
		case events.TransactionDecided:
			log.InfoContext(ctx, "Fund request decided",
				"transactionID", evt.Transaction.ID,
				"status", evt.Transaction.Status,
				"decidedBy", evt.Transaction.DecidedBy,
				"remark", evt.Transaction.AdminRemark,
				"occurredAt", evt.OccurredAt,
			)
		case events.UserRegistered:
			log.InfoContext(ctx, "User registered",
				"userID", evt.UserID,
				"username", evt.Username,
				"role", evt.Role,
				"occurredAt", evt.OccurredAt,
			)
		default:
			log.Error("Unexpected event type")
			return fmt.Errorf("unexpected event type: %s", e.Type())
		}
		return nil
	}
}

// Key identifies an event by its type, subject and resulting status, so a
// redelivered message maps to the same key.
func Key(e events.Event) string {
	switch evt := deref(e).(type) {
	case events.TransactionSubmitted:
		return fmt.Sprintf("%s:%s:%s", e.Type(), evt.Transaction.ID, evt.Transaction.Status)
	case events.TransactionDecided:
		return fmt.Sprintf("%s:%s:%s", e.Type(), evt.Transaction.ID, evt.Transaction.Status)
	case events.UserRegistered:
		return fmt.Sprintf("%s:%s", e.Type(), evt.UserID)
	}
	return ""
}

// deref accepts both the values emitted in process and the pointers decoded
// from a broker.
func deref(e events.Event) events.Event {
	switch evt := e.(type) {
	case *events.TransactionSubmitted:
		return *evt
	case *events.TransactionDecided:
		return *evt
	case *events.UserRegistered:
		return *evt
	}
	return e
}
