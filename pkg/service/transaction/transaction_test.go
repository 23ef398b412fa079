package transaction_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/finsova/fundrequest/infra/eventbus"
	"github.com/finsova/fundrequest/infra/repository/memory"
	"github.com/finsova/fundrequest/internal/fixtures/mocks"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/domain/user"
	txsvc "github.com/finsova/fundrequest/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var baseTime = time.Date(2025, 7, 11, 9, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	store *memory.Store
	bus   *eventbus.MemoryEventBus
	svc   *txsvc.Service
	now   time.Time
	admin user.Principal
	alice user.Principal
	bob   user.Principal
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = memory.New()
	s.bus = eventbus.NewWithMemory(logger, eventbus.WithRecording())
	s.now = baseTime
	s.svc = txsvc.New(s.store, s.bus, logger, txsvc.WithClock(func() time.Time { return s.now }))
	s.admin = user.Principal{UserID: uuid.New(), Role: user.RoleAdmin}
	s.alice = user.Principal{UserID: uuid.New(), Role: user.RoleUser}
	s.bob = user.Principal{UserID: uuid.New(), Role: user.RoleUser}
}

func (s *ServiceSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *ServiceSuite) submit(p user.Principal, utr string) *transaction.Transaction {
	tx, err := s.svc.Submit(context.Background(), p, txsvc.SubmitInput{
		SenderBankAccount: "HDFC",
		DepositAccount:    "ICICI",
		UTRNumber:         utr,
	})
	s.Require().NoError(err)
	s.now = s.now.Add(time.Minute)
	return tx
}

func (s *ServiceSuite) collect(p user.Principal, f transaction.Filter) []*transaction.Transaction {
	seq, err := s.svc.List(context.Background(), p, f)
	s.Require().NoError(err)
	return slices.Collect(seq)
}

func (s *ServiceSuite) TestSubmitThenDecideScenario() {
	ctx := context.Background()
	tx, err := s.svc.Submit(ctx, s.alice, txsvc.SubmitInput{
		SenderBankAccount: "HDFC",
		DepositAccount:    "ICICI",
		UTRNumber:         "UTR123",
		Recipient:         "John",
	})
	s.Require().NoError(err)
	s.Equal(transaction.StatusPending, tx.Status)
	s.Equal(s.alice.UserID, tx.SubmittedBy)
	s.Equal(baseTime, tx.SubmittedAt)

	decided, err := s.svc.Decide(ctx, s.admin, tx.ID, "Approved", "Matched with bank")
	s.Require().NoError(err)
	s.Equal(transaction.StatusApproved, decided.Status)
	s.Equal("Matched with bank", decided.AdminRemark)
	s.Require().NotNil(decided.DecidedBy)
	s.Equal(s.admin.UserID, *decided.DecidedBy)

	_, err = s.svc.Decide(ctx, s.admin, tx.ID, "Rejected", "")
	s.ErrorIs(err, domain.ErrInvalidState)

	published := s.bus.Published()
	s.Require().Len(published, 2)
	s.Equal(events.EventTypeTransactionSubmitted.String(), published[0].Type())
	s.Equal(events.EventTypeTransactionDecided.String(), published[1].Type())
}

func (s *ServiceSuite) TestSubmitValidation() {
	_, err := s.svc.Submit(context.Background(), s.alice, txsvc.SubmitInput{
		SenderBankAccount: "HDFC",
		UTRNumber:         "UTR1",
	})
	s.ErrorIs(err, domain.ErrValidation)
	s.Equal("depositAccount", domain.FieldOf(err))
	s.Empty(s.collect(s.admin, transaction.Filter{}))
	s.Empty(s.bus.Published())
}

func (s *ServiceSuite) TestSubmitDuplicateUTR() {
	s.submit(s.alice, "UTR1")
	_, err := s.svc.Submit(context.Background(), s.bob, txsvc.SubmitInput{
		SenderBankAccount: "SBI", DepositAccount: "ICICI", UTRNumber: "UTR1",
	})
	s.ErrorIs(err, domain.ErrConflict)
	s.Len(s.collect(s.admin, transaction.Filter{}), 1)
}

func (s *ServiceSuite) TestDecideRules() {
	ctx := context.Background()
	tx := s.submit(s.alice, "UTR1")

	_, err := s.svc.Decide(ctx, s.alice, tx.ID, "Approved", "self-approve")
	s.ErrorIs(err, domain.ErrForbidden)

	_, err = s.svc.Decide(ctx, s.admin, tx.ID, "Pending", "")
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Decide(ctx, s.admin, uuid.New(), "Approved", "")
	s.ErrorIs(err, domain.ErrNotFound)

	got, err := s.svc.Get(ctx, s.admin, tx.ID)
	s.Require().NoError(err)
	s.Equal(transaction.StatusPending, got.Status, "failed decisions leave the record untouched")
	s.Empty(got.AdminRemark)
}

func (s *ServiceSuite) TestGetScoping() {
	ctx := context.Background()
	tx := s.submit(s.alice, "UTR1")

	_, err := s.svc.Get(ctx, s.alice, tx.ID)
	s.NoError(err)
	_, err = s.svc.Get(ctx, s.bob, tx.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.svc.Get(ctx, s.admin, tx.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestListOrderingFiltersAndScope() {
	ctx := context.Background()
	a1 := s.submit(s.alice, "A1")
	b1 := s.submit(s.bob, "B1")
	a2 := s.submit(s.alice, "A2")
	_, err := s.svc.Decide(ctx, s.admin, a1.ID, "Approved", "")
	s.Require().NoError(err)

	all := s.collect(s.admin, transaction.Filter{})
	s.Equal([]uuid.UUID{a2.ID, b1.ID, a1.ID}, ids(all))

	approved := s.collect(s.admin, transaction.Filter{Status: transaction.StatusApproved})
	s.Equal([]uuid.UUID{a1.ID}, ids(approved))
	for _, tx := range approved {
		s.Equal(transaction.StatusApproved, tx.Status)
	}

	s.Equal([]uuid.UUID{a2.ID, a1.ID}, ids(s.collect(s.alice, transaction.Filter{})))

	_, err = s.svc.List(ctx, s.alice, transaction.Filter{SubmittedBy: s.bob.UserID})
	s.ErrorIs(err, domain.ErrForbidden)

	from, to := b1.SubmittedAt, b1.SubmittedAt
	s.Equal([]uuid.UUID{b1.ID}, ids(s.collect(s.admin, transaction.Filter{DateFrom: &from, DateTo: &to})))

	late := baseTime.Add(time.Hour)
	_, err = s.svc.List(ctx, s.admin, transaction.Filter{DateFrom: &late, DateTo: &from})
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.List(ctx, user.Principal{Role: user.RoleUser}, transaction.Filter{})
	s.ErrorIs(err, domain.ErrUnauthorized)
}

func (s *ServiceSuite) TestListTiesKeepInsertionOrder() {
	ctx := context.Background()
	var want []uuid.UUID
	for _, utr := range []string{"FIRST", "SECOND", "THIRD"} {
		tx, err := s.svc.Submit(ctx, s.alice, txsvc.SubmitInput{
			SenderBankAccount: "HDFC",
			DepositAccount:    "ICICI",
			UTRNumber:         utr,
		})
		s.Require().NoError(err)
		want = append(want, tx.ID)
	}

	s.Equal(want, ids(s.collect(s.admin, transaction.Filter{})))
	s.Equal(want, ids(s.collect(s.alice, transaction.Filter{})))
}

func (s *ServiceSuite) TestListIsSnapshotAndRestartable() {
	s.submit(s.alice, "A1")
	seq, err := s.svc.List(context.Background(), s.admin, transaction.Filter{})
	s.Require().NoError(err)

	s.submit(s.alice, "A2")
	first := slices.Collect(seq)
	s.Len(first, 1, "records added after the call are not visible")

	first[0].Status = transaction.StatusRejected
	second := slices.Collect(seq)
	s.Len(second, 1)
	s.Equal(transaction.StatusPending, second[0].Status)

	for range seq {
		break
	}
}

func (s *ServiceSuite) TestExportMatchesList() {
	ctx := context.Background()
	for _, utr := range []string{"U1", "U2", "U3"} {
		s.submit(s.alice, utr)
	}
	s.submit(s.bob, "U4")

	f := transaction.Filter{Status: transaction.StatusPending}
	listed := s.collect(s.alice, f)

	out, err := s.svc.Export(ctx, s.alice, f, "delimited")
	s.Require().NoError(err)
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	s.Require().NoError(err)
	s.Len(records, len(listed)+1)

	out, err = s.svc.Export(ctx, s.admin, f, "TABULAR")
	s.Require().NoError(err)
	s.Contains(string(out), "U4")

	_, err = s.svc.Export(ctx, s.alice, f, "pdf")
	s.ErrorIs(err, domain.ErrFormat)
}

func (s *ServiceSuite) TestSummary() {
	ctx := context.Background()
	s.now = baseTime.AddDate(0, -1, 0)
	old := s.submit(s.alice, "OLD")
	s.now = baseTime.AddDate(0, 0, -1)
	s.submit(s.alice, "YESTERDAY")
	s.now = baseTime
	today := s.submit(s.bob, "TODAY")
	_, err := s.svc.Decide(ctx, s.admin, old.ID, "Rejected", "no match")
	s.Require().NoError(err)
	_, err = s.svc.Decide(ctx, s.admin, today.ID, "Approved", "")
	s.Require().NoError(err)

	sum, err := s.svc.Summary(ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(txsvc.Summary{Total: 3, Pending: 1, Approved: 1, Rejected: 1, Today: 1, ThisMonth: 2}, sum)

	_, err = s.svc.Summary(ctx, s.alice)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ServiceSuite) TestConcurrentDecide() {
	ctx := context.Background()
	tx := s.submit(s.alice, "RACE")

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		invalid int
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := "Approved"
			if i%2 == 1 {
				decision = "Rejected"
			}
			_, err := s.svc.Decide(ctx, s.admin, tx.ID, decision, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrInvalidState):
				invalid++
			}
		}(i)
	}
	wg.Wait()
	s.Equal(1, wins)
	s.Equal(workers-1, invalid)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func TestSubmit_EmitFailureKeepsRecord(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	bus := mocks.NewMockBus(t)
	bus.On("Emit", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := txsvc.New(store, bus, logger)
	p := user.Principal{UserID: uuid.New(), Role: user.RoleUser}

	tx, err := svc.Submit(context.Background(), p, txsvc.SubmitInput{
		SenderBankAccount: "HDFC", DepositAccount: "ICICI", UTRNumber: "UTR1",
	})
	require.NoError(t, err)
	got, err := svc.Get(context.Background(), p, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}

func TestExport_FormatCheckedBeforeQuery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := mocks.NewMockUnitOfWork(t)
	svc := txsvc.New(uow, nil, logger)
	admin := user.Principal{UserID: uuid.New(), Role: user.RoleAdmin}

	_, err := svc.Export(context.Background(), admin, transaction.Filter{}, "xlsx")
	require.ErrorIs(t, err, domain.ErrFormat)
	uow.AssertNotCalled(t, "Do", mock.Anything)
}

func TestList_StoreErrorPropagates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := mocks.NewMockTransactionRepository(t)
	uow := mocks.NewMockUnitOfWork(t)
	uow.Transactions = repo
	uow.On("Do", mock.Anything).Return(nil)
	boom := errors.New("connection reset")
	repo.On("List", mock.Anything, mock.Anything).Return(nil, boom)
	svc := txsvc.New(uow, nil, logger)

	_, err := svc.List(context.Background(), user.Principal{UserID: uuid.New(), Role: user.RoleAdmin}, transaction.Filter{})
	require.ErrorIs(t, err, boom)
}

func ids(txs []*transaction.Transaction) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}
