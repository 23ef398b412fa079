// Package memory provides the in-process store used by default and in tests.
// Each repository method is atomic on its own; Do runs fn without any
// additional isolation.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/repository"
	txrepo "github.com/finsova/fundrequest/pkg/repository/transaction"
	userrepo "github.com/finsova/fundrequest/pkg/repository/user"
)

// Store holds the repositories for the lifetime of the process.
type Store struct {
	transactions *TransactionRepository
	users        *UserRepository
	closed       atomic.Bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		transactions: NewTransactionRepository(),
		users:        NewUserRepository(),
	}
}

// Do implements repository.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if s.closed.Load() {
		return domain.NewError(domain.ErrInvalidState, "", "store is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

// TransactionRepository implements repository.UnitOfWork.
func (s *Store) TransactionRepository() (txrepo.Repository, error) {
	return s.transactions, nil
}

// UserRepository implements repository.UnitOfWork.
func (s *Store) UserRepository() (userrepo.Repository, error) {
	return s.users, nil
}

// Close releases the records. Further Do calls fail.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.transactions.reset()
	s.users.reset()
	return nil
}

var _ repository.Store = (*Store)(nil)
