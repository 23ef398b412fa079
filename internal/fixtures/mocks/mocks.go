// Package mocks holds testify mocks of the repository and event bus contracts.
package mocks

import (
	"context"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/finsova/fundrequest/pkg/repository"
	txrepo "github.com/finsova/fundrequest/pkg/repository/transaction"
	userrepo "github.com/finsova/fundrequest/pkg/repository/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// NewMockUnitOfWork creates a MockUnitOfWork whose expectations are asserted
// when the test finishes.
func NewMockUnitOfWork(t testingT) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockUnitOfWork runs Do against itself and hands out the configured
// repositories.
type MockUnitOfWork struct {
	mock.Mock
	Transactions txrepo.Repository
	Users        userrepo.Repository
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockUnitOfWork) TransactionRepository() (txrepo.Repository, error) {
	return m.Transactions, nil
}

func (m *MockUnitOfWork) UserRepository() (userrepo.Repository, error) {
	return m.Users, nil
}

// NewMockTransactionRepository creates a MockTransactionRepository whose
// expectations are asserted when the test finishes.
func NewMockTransactionRepository(t testingT) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Decide(ctx context.Context, d txrepo.Decision) (*transaction.Transaction, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func NewMockBus(t testingT) *MockBus {
	m := &MockBus{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Emit(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

var (
	_ repository.UnitOfWork = (*MockUnitOfWork)(nil)
	_ txrepo.Repository     = (*MockTransactionRepository)(nil)
	_ userrepo.Repository   = (*MockUserRepository)(nil)
	_ eventbus.Bus          = (*MockBus)(nil)
)
