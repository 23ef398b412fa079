// Package auth authenticates dashboard users and issues the JWTs that carry
// their principal.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/repository"
	"github.com/finsova/fundrequest/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for every failed login, whatever the cause.
var ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "", "invalid credentials")

// dummyHash is compared against when the identity is unknown so that both
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("finsova-dummy-password")
	return h
})

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger.With("service", "auth"), now: time.Now}
}

// Login checks identity (username or email) and password.
func (s *Service) Login(
	ctx context.Context,
	identity, password string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Login", "identity", identity)
	log.Debug("Login called")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if utils.IsEmail(identity) {
			u, err = repo.GetByEmail(ctx, identity)
		} else {
			u, err = repo.GetByUsername(ctx, identity)
		}
		if errors.Is(err, domain.ErrNotFound) {
			_ = utils.CheckPasswordHash(password, dummyHash())
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !u.CanLogin() || !utils.CheckPasswordHash(password, u.PasswordHash) {
			return ErrInvalidCredentials
		}
		return nil
	})
	if err != nil {
		log.Error("Login failed", "error", err)
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

// GenerateToken signs an HS256 token carrying the user's principal.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	log := s.logger.With("userID", u.ID)
	log.Debug("GenerateToken called")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      s.now().Add(s.cfg.Expiry).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful")
	return tokenString, nil
}

// PrincipalFromToken reads the principal out of a verified token.
func (s *Service) PrincipalFromToken(token *jwt.Token) (user.Principal, error) {
	unauthorized := domain.NewError(domain.ErrUnauthorized, "", "invalid token claims")
	if token == nil {
		return user.Principal{}, unauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return user.Principal{}, unauthorized
	}
	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil || id == uuid.Nil {
		return user.Principal{}, unauthorized
	}
	rawRole, _ := claims["role"].(string)
	role, err := user.ParseRole(rawRole)
	if err != nil {
		return user.Principal{}, unauthorized
	}
	return user.Principal{UserID: id, Role: role}, nil
}
