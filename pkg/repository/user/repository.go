package user

import (
	"context"

	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/google/uuid"
)

// Repository defines the storage contract for user accounts.
type Repository interface {
	// Create inserts u. The uniqueness check on username and email and the
	// insert happen as one step; a clash returns domain.ErrConflict with
	// the offending field.
	Create(ctx context.Context, u *user.User) error

	// Get retrieves a user by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)

	// GetByUsername looks a user up case-insensitively.
	GetByUsername(ctx context.Context, username string) (*user.User, error)

	// GetByEmail looks a user up case-insensitively.
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
