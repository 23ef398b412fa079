// Package user provides registration and lookup of dashboard accounts.
package user

import (
	"context"
	"log/slog"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/finsova/fundrequest/pkg/repository"
	"github.com/google/uuid"
)

// Service provides business logic for user registration and lookup.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork, an event bus and a logger.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		bus:    bus,
		logger: logger.With("service", "user"),
	}
}

// RegisterInput holds the fields of the registration form.
type RegisterInput struct {
	FullName      string
	Username      string
	Email         string
	Role          string
	Country       string
	ContactNumber string
	IsActive      bool
	Plan          string
	Password      string
}

// Register validates in and creates the account. Username and email must be
// unique regardless of letter case.
func (s *Service) Register(
	ctx context.Context,
	in RegisterInput,
) (u *user.User, err error) {
	log := s.logger.With("op", "Register", "username", in.Username)
	log.Debug("Register called")

	u, err = user.New(user.Registration{
		FullName:      in.FullName,
		Username:      in.Username,
		Email:         in.Email,
		Role:          in.Role,
		Country:       in.Country,
		ContactNumber: in.ContactNumber,
		Plan:          in.Plan,
		IsActive:      in.IsActive,
		Password:      in.Password,
	})
	if err != nil {
		log.Error("Register rejected", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		log.Error("Register failed", "error", err)
		return nil, err
	}

	log.Info("User registered", "userID", u.ID, "role", u.Role)
	if s.bus != nil {
		evt := events.UserRegistered{UserID: u.ID, Username: u.Username, Role: string(u.Role), OccurredAt: u.CreatedAt}
		if err := s.bus.Emit(ctx, evt); err != nil {
			log.Error("failed to publish event", "type", evt.Type(), "error", err)
		}
	}
	return u, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(
	ctx context.Context,
	id uuid.UUID,
) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Debug("Get failed", "userID", id, "error", err)
		u = nil
	}
	return
}

// GetByUsername retrieves a user by username, ignoring letter case.
func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		s.logger.Debug("GetByUsername failed", "username", username, "error", err)
		u = nil
	}
	return
}
