package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finsova/fundrequest/infra/repository/memory"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	txrepo "github.com/finsova/fundrequest/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(t *testing.T, utr string, owner uuid.UUID, at time.Time) *transaction.Transaction {
	t.Helper()
	tx, err := transaction.New().
		WithSenderBankAccount("HDFC").
		WithDepositAccount("ICICI").
		WithUTRNumber(utr).
		WithSubmittedBy(owner).
		WithSubmittedAt(at).
		Build()
	require.NoError(t, err)
	return tx
}

func TestTransactionRepository_CreateGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	tx := newTx(t, "UTR1", uuid.New(), time.Now())

	require.NoError(t, repo.Create(ctx, tx))
	got, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	got.Recipient = "mutated"
	again, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Recipient, "stored record must not alias returned copies")

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRepository_DuplicateUTR(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	require.NoError(t, repo.Create(ctx, newTx(t, "UTR1", uuid.New(), time.Now())))

	err := repo.Create(ctx, newTx(t, "UTR1", uuid.New(), time.Now()))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "utrNumber", domain.FieldOf(err))

	all, err := repo.List(ctx, transaction.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTransactionRepository_Decide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	tx := newTx(t, "UTR1", uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, tx))

	admin := uuid.New()
	got, err := repo.Decide(ctx, txrepo.Decision{
		ID: tx.ID, Status: transaction.StatusApproved, Remark: "Matched with bank",
		DecidedBy: admin, DecidedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusApproved, got.Status)
	assert.Equal(t, "Matched with bank", got.AdminRemark)

	_, err = repo.Decide(ctx, txrepo.Decision{ID: tx.ID, Status: transaction.StatusRejected, DecidedBy: admin, DecidedAt: time.Now()})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := repo.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusApproved, stored.Status)
	assert.Equal(t, "Matched with bank", stored.AdminRemark)

	_, err = repo.Decide(ctx, txrepo.Decision{ID: uuid.New(), Status: transaction.StatusRejected})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRepository_ConcurrentDecide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	tx := newTx(t, "UTR-RACE", uuid.New(), time.Now())
	require.NoError(t, repo.Create(ctx, tx))

	const workers = 32
	var wins, invalid atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			status := transaction.StatusApproved
			if i%2 == 1 {
				status = transaction.StatusRejected
			}
			_, err := repo.Decide(ctx, txrepo.Decision{ID: tx.ID, Status: status, DecidedBy: uuid.New(), DecidedAt: time.Now()})
			switch {
			case err == nil:
				wins.Add(1)
			case domain.FieldOf(err) == "status":
				invalid.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(workers-1), invalid.Load())
}

func TestTransactionRepository_ListOrderAndFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewTransactionRepository()
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2025, 7, 11, 10, 0, 0, 0, time.UTC)

	first := newTx(t, "UTR-A1", alice, base)
	second := newTx(t, "UTR-B1", bob, base.Add(time.Hour))
	tie := newTx(t, "UTR-A2", alice, base)
	for _, tx := range []*transaction.Transaction{first, second, tie} {
		require.NoError(t, repo.Create(ctx, tx))
	}

	all, err := repo.List(ctx, transaction.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"UTR-B1", "UTR-A1", "UTR-A2"}, utrs(all), "equal timestamps keep insertion order")

	mine, err := repo.List(ctx, transaction.Filter{SubmittedBy: alice})
	require.NoError(t, err)
	assert.Equal(t, []string{"UTR-A1", "UTR-A2"}, utrs(mine))

	from := base.Add(30 * time.Minute)
	later, err := repo.List(ctx, transaction.Filter{DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, []string{"UTR-B1"}, utrs(later))

	_, err = repo.Decide(ctx, txrepo.Decision{ID: first.ID, Status: transaction.StatusApproved, DecidedAt: time.Now()})
	require.NoError(t, err)
	approved, err := repo.List(ctx, transaction.Filter{Status: transaction.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, []string{"UTR-A1"}, utrs(approved))
}

func utrs(txs []*transaction.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.UTRNumber)
	}
	return out
}
