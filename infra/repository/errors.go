package repository

import (
	"errors"

	"github.com/finsova/fundrequest/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// Traverses the error chain so wrapped driver errors are mapped too.
// conflictField names the field a duplicate-key violation is reported on.
func MapGormErrorToDomain(err error, conflictField string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.NewError(domain.ErrConflict, conflictField, "already exists")
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.NewError(domain.ErrNotFound, "id", "not found")
		}
		currentErr = errors.Unwrap(currentErr)
	}
	return err
}

// WrapError runs a GORM operation and maps its error.
//
// Usage:
//
//	err := WrapError("", func() error {
//	    return r.db.WithContext(ctx).Model(&Transaction{}).Count(&count).Error
//	})
func WrapError(conflictField string, op func() error) error {
	return MapGormErrorToDomain(op(), conflictField)
}

// CreateUnique inserts row in its own transaction, or in a savepoint when db
// is already inside one, so the connection is still usable after a unique
// index rejects the row. On a duplicate key attribute is asked which field
// clashed; it returns the conflict to report, or nil when only the primary
// key could have collided.
func CreateUnique(db *gorm.DB, row any, attribute func() error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return MapGormErrorToDomain(err, "")
	}
	if err := attribute(); err != nil {
		return err
	}
	return domain.NewError(domain.ErrConflict, "id", "already exists")
}
