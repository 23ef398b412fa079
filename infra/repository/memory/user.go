package memory

import (
	"context"
	"sync"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/user"
	userrepo "github.com/finsova/fundrequest/pkg/repository/user"
	"github.com/google/uuid"
)

// UserRepository keeps accounts plus unique indexes on the normalized
// username and email. One mutex covers all three maps so the uniqueness
// check and the insert are indivisible.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]user.User
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[uuid.UUID]user.User),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

// Create implements user.Repository.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uk, ek := user.UsernameKey(u.Username), user.EmailKey(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[uk]; ok {
		return domain.Conflict("username", "username already taken")
	}
	if _, ok := r.byEmail[ek]; ok {
		return domain.Conflict("email", "email already registered")
	}
	if _, ok := r.byID[u.ID]; ok {
		return domain.Conflict("id", "user already exists")
	}
	r.byID[u.ID] = *u
	r.byUsername[uk] = u.ID
	r.byEmail[ek] = u.ID
	return nil
}

// Get implements user.Repository.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

// GetByUsername implements user.Repository.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[user.UsernameKey(username)]
	if !ok {
		return nil, domain.NotFound("username", "user not found")
	}
	return r.lookup(id)
}

// GetByEmail implements user.Repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[user.EmailKey(email)]
	if !ok {
		return nil, domain.NotFound("email", "user not found")
	}
	return r.lookup(id)
}

// lookup expects r.mu to be held.
func (r *UserRepository) lookup(id uuid.UUID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("id", "user not found")
	}
	return &u, nil
}

func (r *UserRepository) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[uuid.UUID]user.User)
	r.byUsername = make(map[string]uuid.UUID)
	r.byEmail = make(map[string]uuid.UUID)
}

var _ userrepo.Repository = (*UserRepository)(nil)
