package repository

import (
	"context"

	"github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/finsova/fundrequest/pkg/repository/user"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Repositories obtained from the UnitOfWork passed into Do share its session,
// so everything done inside fn commits or rolls back together.
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	TransactionRepository() (transaction.Repository, error)
	UserRepository() (user.Repository, error)
}

// Store is a UnitOfWork that owns backing resources. It is opened at service
// start and closed at shutdown.
type Store interface {
	UnitOfWork
	Close() error
}
