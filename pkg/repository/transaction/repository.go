package transaction

import (
	"context"
	"time"

	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/google/uuid"
)

// Decision is the single mutation a stored transaction accepts.
type Decision struct {
	ID        uuid.UUID
	Status    transaction.Status
	Remark    string
	DecidedBy uuid.UUID
	DecidedAt time.Time
}

// Repository defines the storage contract for fund requests. Records are
// append-only; Decide is the only in-place update.
type Repository interface {
	// Create inserts a new transaction. A duplicate ID or UTR number
	// returns domain.ErrConflict.
	Create(ctx context.Context, tx *transaction.Transaction) error

	// Get retrieves a transaction by its ID, or domain.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// Decide atomically moves a Pending transaction into d.Status. When the
	// record is not Pending any more it returns domain.ErrInvalidState, and
	// domain.ErrNotFound when the ID is unknown.
	Decide(ctx context.Context, d Decision) (*transaction.Transaction, error)

	// List returns every transaction matching filter, newest submission
	// first with later insertions first among equal timestamps.
	List(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error)
}
