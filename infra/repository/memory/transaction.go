package memory

import (
	"context"
	"sync"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	txrepo "github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/google/uuid"
)

type txRecord struct {
	seq uint64
	tx  *transaction.Transaction
}

// TransactionRepository keeps fund requests in a map guarded by an RWMutex.
// Writers hold the lock for the whole check-and-set, so a decision is never
// half-visible to readers and two decisions on one record cannot both pass
// the Pending check.
type TransactionRepository struct {
	mu    sync.RWMutex
	seq   uint64
	byID  map[uuid.UUID]*txRecord
	byUTR map[string]uuid.UUID
}

// NewTransactionRepository creates an empty repository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID:  make(map[uuid.UUID]*txRecord),
		byUTR: make(map[string]uuid.UUID),
	}
}

// Create implements transaction.Repository.
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[tx.ID]; ok {
		return domain.Conflict("id", "transaction already exists")
	}
	if _, ok := r.byUTR[tx.UTRNumber]; ok {
		return domain.Conflict("utrNumber", "UTR number already submitted")
	}
	r.seq++
	r.byID[tx.ID] = &txRecord{seq: r.seq, tx: tx.Clone()}
	r.byUTR[tx.UTRNumber] = tx.ID
	return nil
}

// Get implements transaction.Repository.
func (r *TransactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("id", "transaction not found")
	}
	return rec.tx.Clone(), nil
}

// Decide implements transaction.Repository.
func (r *TransactionRepository) Decide(ctx context.Context, d txrepo.Decision) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[d.ID]
	if !ok {
		return nil, domain.NotFound("id", "transaction not found")
	}
	// Decide on a copy so a rejected transition leaves the stored record as is.
	next := rec.tx.Clone()
	if err := next.Decide(d.Status, d.Remark, d.DecidedBy, d.DecidedAt); err != nil {
		return nil, err
	}
	rec.tx = next
	return next.Clone(), nil
}

// List implements transaction.Repository.
func (r *TransactionRepository) List(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]transaction.Sequenced, 0, len(r.byID))
	for _, rec := range r.byID {
		if filter.Matches(rec.tx) {
			matched = append(matched, transaction.Sequenced{Seq: rec.seq, Tx: rec.tx.Clone()})
		}
	}
	r.mu.RUnlock()

	transaction.SortNewestFirst(matched)
	result := make([]*transaction.Transaction, 0, len(matched))
	for _, m := range matched {
		result = append(result, m.Tx)
	}
	return result, nil
}

func (r *TransactionRepository) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[uuid.UUID]*txRecord)
	r.byUTR = make(map[string]uuid.UUID)
}

var _ txrepo.Repository = (*TransactionRepository)(nil)
