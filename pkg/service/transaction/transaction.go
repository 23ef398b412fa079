// Package transaction provides the fund request workflow: submission, admin
// decisions, filtered history, summary counters and exports.
package transaction

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/finsova/fundrequest/pkg/export"
	"github.com/finsova/fundrequest/pkg/repository"
	txrepo "github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/google/uuid"
)

// Service runs fund request operations on behalf of a principal.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		uow:    uow,
		bus:    bus,
		logger: logger.With("service", "transaction"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries the fields of a new fund request.
type SubmitInput struct {
	SenderBankAccount string
	DepositAccount    string
	UTRNumber         string
	Recipient         string
	TransferredAt     *time.Time
}

// Submit stores a new Pending fund request owned by p.
func (s *Service) Submit(
	ctx context.Context,
	p user.Principal,
	in SubmitInput,
) (*transaction.Transaction, error) {
	log := s.logger.With("op", "Submit", "userID", p.UserID, "utr", in.UTRNumber)
	log.Debug("Submit called")

	tx, err := transaction.New().
		WithSenderBankAccount(in.SenderBankAccount).
		WithDepositAccount(in.DepositAccount).
		WithUTRNumber(in.UTRNumber).
		WithRecipient(in.Recipient).
		WithTransferredAt(in.TransferredAt).
		WithSubmittedAt(s.now()).
		WithSubmittedBy(p.UserID).
		Build()
	if err != nil {
		log.Error("Submit rejected", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, tx)
	})
	if err != nil {
		log.Error("Submit failed", "error", err)
		return nil, err
	}

	log.Info("Transaction submitted", "transactionID", tx.ID)
	s.emit(ctx, events.TransactionSubmitted{Transaction: *tx.Clone(), OccurredAt: tx.SubmittedAt})
	return tx, nil
}

// Decide approves or rejects a Pending fund request. Only admins may decide.
func (s *Service) Decide(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
	decision string,
	remark string,
) (*transaction.Transaction, error) {
	log := s.logger.With("op", "Decide", "userID", p.UserID, "transactionID", id, "decision", decision)
	log.Debug("Decide called")

	if !p.IsAdmin() {
		log.Error("Decide forbidden")
		return nil, domain.Forbidden("only admins may decide transactions")
	}
	status, err := transaction.ParseDecision(decision)
	if err != nil {
		log.Error("Decide rejected", "error", err)
		return nil, err
	}

	var tx *transaction.Transaction
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err = repo.Decide(ctx, txrepo.Decision{
			ID:        id,
			Status:    status,
			Remark:    remark,
			DecidedBy: p.UserID,
			DecidedAt: s.now().UTC(),
		})
		return err
	})
	if err != nil {
		log.Error("Decide failed", "error", err)
		return nil, err
	}

	log.Info("Transaction decided", "status", tx.Status)
	s.emit(ctx, events.TransactionDecided{Transaction: *tx.Clone(), OccurredAt: *tx.DecidedAt})
	return tx, nil
}

// Get returns one fund request. Non-admins only see their own; anything else
// is reported as not found.
func (s *Service) Get(
	ctx context.Context,
	p user.Principal,
	id uuid.UUID,
) (*transaction.Transaction, error) {
	log := s.logger.With("op", "Get", "userID", p.UserID, "transactionID", id)
	log.Debug("Get called")

	var tx *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err = repo.Get(ctx, id)
		return err
	})
	if err == nil && !p.IsAdmin() && tx.SubmittedBy != p.UserID {
		err = domain.NotFound("id", "transaction not found")
	}
	if err != nil {
		log.Error("Get failed", "error", err)
		return nil, err
	}
	return tx, nil
}

// List returns the fund requests matching f, newest first. The sequence
// replays a snapshot taken during the call. Non-admins are limited to their
// own requests.
func (s *Service) List(
	ctx context.Context,
	p user.Principal,
	f transaction.Filter,
) (iter.Seq[*transaction.Transaction], error) {
	log := s.logger.With("op", "List", "userID", p.UserID)
	log.Debug("List called", "status", f.Status, "submittedBy", f.SubmittedBy)

	snapshot, err := s.snapshot(ctx, p, f)
	if err != nil {
		log.Error("List failed", "error", err)
		return nil, err
	}
	log.Info("List successful", "count", len(snapshot))
	return replay(snapshot), nil
}

// Export renders the same view as List in the requested format.
func (s *Service) Export(
	ctx context.Context,
	p user.Principal,
	f transaction.Filter,
	format string,
) ([]byte, error) {
	log := s.logger.With("op", "Export", "userID", p.UserID, "format", format)
	log.Debug("Export called")

	ft, err := export.ParseFormat(format)
	if err != nil {
		log.Error("Export rejected", "error", err)
		return nil, err
	}
	snapshot, err := s.snapshot(ctx, p, f)
	if err != nil {
		log.Error("Export failed", "error", err)
		return nil, err
	}
	out, err := export.Render(replay(snapshot), ft)
	if err != nil {
		log.Error("Export failed", "error", err)
		return nil, err
	}
	log.Info("Export successful", "rows", len(snapshot), "bytes", len(out))
	return out, nil
}

// Summary holds the dashboard counters.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Today     int `json:"today"`
	ThisMonth int `json:"thisMonth"`
}

// Summary counts all fund requests by status, plus those submitted in the
// current UTC day and month. Admin only.
func (s *Service) Summary(
	ctx context.Context,
	p user.Principal,
) (Summary, error) {
	log := s.logger.With("op", "Summary", "userID", p.UserID)
	log.Debug("Summary called")

	if !p.IsAdmin() {
		log.Error("Summary forbidden")
		return Summary{}, domain.Forbidden("only admins may view the summary")
	}
	all, err := s.snapshot(ctx, p, transaction.Filter{})
	if err != nil {
		log.Error("Summary failed", "error", err)
		return Summary{}, err
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	sum := Summary{Total: len(all)}
	for _, tx := range all {
		switch tx.Status {
		case transaction.StatusPending:
			sum.Pending++
		case transaction.StatusApproved:
			sum.Approved++
		case transaction.StatusRejected:
			sum.Rejected++
		}
		if !tx.SubmittedAt.Before(dayStart) {
			sum.Today++
		}
		if !tx.SubmittedAt.Before(monthStart) {
			sum.ThisMonth++
		}
	}
	log.Info("Summary successful", "total", sum.Total)
	return sum, nil
}

// snapshot validates f, applies the principal's scope and reads the matching
// records.
func (s *Service) snapshot(
	ctx context.Context,
	p user.Principal,
	f transaction.Filter,
) ([]*transaction.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		if p.UserID == uuid.Nil {
			return nil, domain.NewError(domain.ErrUnauthorized, "", "missing principal")
		}
		switch f.SubmittedBy {
		case uuid.Nil:
			f.SubmittedBy = p.UserID
		case p.UserID:
		default:
			return nil, domain.Forbidden("users may only list their own transactions")
		}
	}

	var txs []*transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = repo.List(ctx, f)
		return err
	})
	return txs, err
}

// replay yields copies so consumers cannot alter the snapshot between runs.
func replay(txs []*transaction.Transaction) iter.Seq[*transaction.Transaction] {
	return func(yield func(*transaction.Transaction) bool) {
		for _, tx := range txs {
			if !yield(tx.Clone()) {
				return
			}
		}
	}
}

// emit publishes after commit; a failure is logged and never undoes the write.
func (s *Service) emit(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Error("failed to publish event", "type", evt.Type(), "error", err)
	}
}
