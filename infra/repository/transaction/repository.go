package transaction

import (
	"context"
	"strings"

	infrarepo "github.com/finsova/fundrequest/infra/repository"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	repo "github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements transaction.Repository.
func (r *repository) Create(
	ctx context.Context,
	tx *transaction.Transaction,
) error {
	row := fromDomain(tx)
	return infrarepo.CreateUnique(r.db.WithContext(ctx), &row, func() error {
		var count int64
		if err := infrarepo.WrapError("", func() error {
			return r.db.WithContext(ctx).
				Model(&Transaction{}).
				Where("utr_number = ?", row.UTRNumber).
				Count(&count).Error
		}); err != nil {
			return err
		}
		if count > 0 {
			return domain.Conflict("utrNumber", "UTR number already submitted")
		}
		return nil
	})
}

// Get implements transaction.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*transaction.Transaction, error) {
	var row Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err, "id")
	}
	return row.toDomain(), nil
}

// Decide implements transaction.Repository. The status guard in the WHERE
// clause makes the transition a single compare-and-set; when no row changes a
// follow-up read tells a missing id from a finished transaction.
func (r *repository) Decide(
	ctx context.Context,
	d repo.Decision,
) (*transaction.Transaction, error) {
	if !d.Status.Terminal() {
		return nil, domain.Validation("decision", "must be Approved or Rejected")
	}
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND status = ?", d.ID, string(transaction.StatusPending)).
		Updates(map[string]any{
			"status":       string(d.Status),
			"admin_remark": strings.TrimSpace(d.Remark),
			"decided_by":   d.DecidedBy,
			"decided_at":   d.DecidedAt.UTC(),
		})
	if res.Error != nil {
		return nil, infrarepo.MapGormErrorToDomain(res.Error, "id")
	}
	current, err := r.Get(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, domain.InvalidState("transaction is already " + string(current.Status))
	}
	return current, nil
}

// List implements transaction.Repository.
func (r *repository) List(
	ctx context.Context,
	filter transaction.Filter,
) ([]*transaction.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&Transaction{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.SubmittedBy != uuid.Nil {
		q = q.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.DateFrom != nil {
		q = q.Where("submitted_at >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		q = q.Where("submitted_at <= ?", filter.DateTo.UTC())
	}

	var rows []Transaction
	if err := q.Order("submitted_at DESC").Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err, "")
	}
	result := make([]*transaction.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDomain())
	}
	return result, nil
}
