package infra

import (
	"context"

	infrarepo "github.com/finsova/fundrequest/infra/repository"
	txinfra "github.com/finsova/fundrequest/infra/repository/transaction"
	userinfra "github.com/finsova/fundrequest/infra/repository/user"
	"github.com/finsova/fundrequest/pkg/repository"
	"github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/finsova/fundrequest/pkg/repository/user"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories taken from the UoW passed into Do share its
// session, so their writes commit or roll back together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
	return infrarepo.MapGormErrorToDomain(err, "")
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// TransactionRepository returns a fund request repository bound to the
// current session.
func (u *UoW) TransactionRepository() (transaction.Repository, error) {
	return txinfra.New(u.session()), nil
}

// UserRepository returns a user repository bound to the current session.
func (u *UoW) UserRepository() (user.Repository, error) {
	return userinfra.New(u.session()), nil
}

// Close releases the connection pool.
func (u *UoW) Close() error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ repository.Store = (*UoW)(nil)
