package user_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/finsova/fundrequest/infra/eventbus"
	"github.com/finsova/fundrequest/infra/repository/memory"
	"github.com/finsova/fundrequest/internal/fixtures/mocks"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/user"
	usersvc "github.com/finsova/fundrequest/pkg/service/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*usersvc.Service, *eventbus.MemoryEventBus) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	bus := eventbus.NewWithMemory(logger, eventbus.WithRecording())
	return usersvc.New(store, bus, logger), bus
}

func input(username, email string) usersvc.RegisterInput {
	return usersvc.RegisterInput{
		FullName:      "John Doe",
		Username:      username,
		Email:         email,
		Role:          "user",
		Country:       "India",
		ContactNumber: "+91 98765 43210",
		IsActive:      true,
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc, bus := newService(t)

	u, err := svc.Register(context.Background(), input("jdoe", "j@x.com"))
	require.NoError(t, err)
	assert.False(t, u.IsKycCompleted)
	assert.Equal(t, user.RoleUser, u.Role)

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byName, err := svc.GetByUsername(context.Background(), "JDOE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	require.Len(t, bus.Published(), 1)
	assert.Equal(t, events.EventTypeUserRegistered.String(), bus.Published()[0].Type())
}

func TestRegister_DuplicateUsernameScenario(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), input("jdoe", "j@x.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input("jdoe", "other@x.com"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "username", domain.FieldOf(err))
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), input("jdoe", "j@x.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input("jane", "J@X.COM"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "email", domain.FieldOf(err))
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc, bus := newService(t)

	in := input("jdoe", "j@x.com")
	in.Role = "owner"
	_, err := svc.Register(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "role", domain.FieldOf(err))

	in = input("jdoe", "j@x.com")
	in.Country = ""
	_, err = svc.Register(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "country", domain.FieldOf(err))

	_, err = svc.GetByUsername(context.Background(), "jdoe")
	assert.ErrorIs(t, err, domain.ErrNotFound, "failed registrations leave no record")
	assert.Empty(t, bus.Published())
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), input("racer", fmt.Sprintf("r%d@x.com", i)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if errors.Is(err, domain.ErrConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	u, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, u)
}

func TestRegister_RepoError(t *testing.T) {
	t.Parallel()
	repo := mocks.NewMockUserRepository(t)
	uow := mocks.NewMockUnitOfWork(t)
	uow.Users = repo
	uow.On("Do", mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
	bus := mocks.NewMockBus(t)
	svc := usersvc.New(uow, bus, slog.New(slog.NewTextHandler(io.Discard, nil)))

	u, err := svc.Register(context.Background(), input("bob", "bob@example.com"))
	require.Error(t, err)
	assert.Nil(t, u)
	bus.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}
