package user

import (
	"context"

	infrarepo "github.com/finsova/fundrequest/infra/repository"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/user"
	repo "github.com/finsova/fundrequest/pkg/repository/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a user repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements user.Repository. The lookups name the clashing field; the
// unique indexes still decide when two registrations race, and the same
// lookups then tell a username clash from an email clash.
func (r *repository) Create(
	ctx context.Context,
	u *user.User,
) error {
	row := fromDomain(u)
	if err := r.taken(ctx, row); err != nil {
		return err
	}
	return infrarepo.CreateUnique(r.db.WithContext(ctx), &row, func() error {
		return r.taken(ctx, row)
	})
}

// taken reports a conflict on the first unique key row shares with a stored
// account.
func (r *repository) taken(ctx context.Context, row User) error {
	if taken, err := r.exists(ctx, "username_key = ?", row.UsernameKey); err != nil {
		return err
	} else if taken {
		return domain.Conflict("username", "username already exists")
	}
	if taken, err := r.exists(ctx, "email_key = ?", row.EmailKey); err != nil {
		return err
	} else if taken {
		return domain.Conflict("email", "email already exists")
	}
	return nil
}

func (r *repository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&User{}).
		Where(cond, arg).
		Count(&count).Error; err != nil {
		return false, infrarepo.MapGormErrorToDomain(err, "")
	}
	return count > 0, nil
}

// Get implements user.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*user.User, error) {
	return r.first(ctx, "id", "id = ?", id)
}

// GetByUsername implements user.Repository.
func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*user.User, error) {
	return r.first(ctx, "username", "username_key = ?", user.UsernameKey(username))
}

// GetByEmail implements user.Repository.
func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*user.User, error) {
	return r.first(ctx, "email", "email_key = ?", user.EmailKey(email))
}

func (r *repository) first(ctx context.Context, field, cond string, arg any) (*user.User, error) {
	var row User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		err = infrarepo.MapGormErrorToDomain(err, "")
		if domain.FieldOf(err) == "id" {
			return nil, domain.NotFound(field, "user not found")
		}
		return nil, err
	}
	return row.toDomain(), nil
}
