package ledger_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/barakabank/bank-service/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newLedger(t *testing.T) (*ledger.Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return ledger.NewLedger(store, testLogger()), store
}

func newAccount(t *testing.T, store *memory.Store, number string, balance string) *models.Account {
	t.Helper()
	account := &models.Account{
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
		OwnerID:       1,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func TestCreditAddsToBalance(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "100.00")

	balance, err := ldg.Credit(context.Background(), account.ID, decimal.RequireFromString("50.25"), nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("150.25")), "got %s", balance)

	stored, err := store.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.RequireFromString("150.25")))
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "100.00")

	var validation *models.ValidationError
	_, err := ldg.Credit(context.Background(), account.ID, decimal.Zero, nil)
	require.ErrorAs(t, err, &validation)

	_, err = ldg.Credit(context.Background(), account.ID, decimal.RequireFromString("-5"), nil)
	require.ErrorAs(t, err, &validation)
}

func TestCreditUnknownAccount(t *testing.T) {
	ldg, _ := newLedger(t)

	_, err := ldg.Credit(context.Background(), 404, decimal.NewFromInt(10), nil)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDebitSubtractsFromBalance(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "100.00")

	balance, err := ldg.Debit(context.Background(), account.ID, decimal.RequireFromString("40.00"), nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("60.00")))
}

func TestDebitInsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "100.00")

	_, err := ldg.Debit(context.Background(), account.ID, decimal.RequireFromString("100.01"), nil)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	stored, err := store.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.RequireFromString("100.00")))
}

func TestTransferMovesExactAmount(t *testing.T) {
	ldg, store := newLedger(t)
	source := newAccount(t, store, "2210000000000001", "1000.00")
	destination := newAccount(t, store, "2210000000000002", "250.00")

	amount := decimal.RequireFromString("300.50")
	require.NoError(t, ldg.Transfer(context.Background(), source.ID, destination.ID, amount, nil))

	gotSource, err := store.AccountByID(context.Background(), source.ID)
	require.NoError(t, err)
	gotDestination, err := store.AccountByID(context.Background(), destination.ID)
	require.NoError(t, err)

	assert.True(t, gotSource.Balance.Equal(decimal.RequireFromString("699.50")))
	assert.True(t, gotDestination.Balance.Equal(decimal.RequireFromString("550.50")))

	// The total across both accounts is invariant.
	total := gotSource.Balance.Add(gotDestination.Balance)
	assert.True(t, total.Equal(decimal.RequireFromString("1250.00")))
}

func TestTransferSameAccount(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "1000.00")

	err := ldg.Transfer(context.Background(), account.ID, account.ID, decimal.NewFromInt(10), nil)
	require.ErrorIs(t, err, models.ErrSameAccountTransfer)
}

func TestTransferInsufficientFundsIsAllOrNothing(t *testing.T) {
	ldg, store := newLedger(t)
	source := newAccount(t, store, "2210000000000001", "100.00")
	destination := newAccount(t, store, "2210000000000002", "0.00")

	err := ldg.Transfer(context.Background(), source.ID, destination.ID, decimal.RequireFromString("100.50"), nil)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	gotSource, _ := store.AccountByID(context.Background(), source.ID)
	gotDestination, _ := store.AccountByID(context.Background(), destination.ID)
	assert.True(t, gotSource.Balance.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, gotDestination.Balance.IsZero())
}

func TestDebitPersistsOperationInSameUnit(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "100.00")

	op := &models.Operation{
		Type:            models.OperationWithdrawal,
		Amount:          decimal.RequireFromString("30.00"),
		Status:          models.StatusCompleted,
		AccountSourceID: account.ID,
	}
	_, err := ldg.Debit(context.Background(), account.ID, op.Amount, op)
	require.NoError(t, err)
	require.NotZero(t, op.ID)

	stored, err := store.OperationByID(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ldg, store := newLedger(t)
	account := newAccount(t, store, "2210000000000001", "10000.00")
	amount := decimal.RequireFromString("6000.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ldg.Debit(context.Background(), account.ID, amount, nil)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, models.ErrInsufficientFunds)
			failures++
		}
	}
	require.Equal(t, 1, failures, "exactly one debit must fail")

	stored, err := store.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.RequireFromString("4000.00")), "got %s", stored.Balance)
}

func TestConcurrentTransfersBetweenSamePairDoNotDeadlock(t *testing.T) {
	ldg, store := newLedger(t)
	a := newAccount(t, store, "2210000000000001", "5000.00")
	b := newAccount(t, store, "2210000000000002", "5000.00")
	amount := decimal.RequireFromString("1.00")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ldg.Transfer(context.Background(), a.ID, b.ID, amount, nil)
		}()
		go func() {
			defer wg.Done()
			_ = ldg.Transfer(context.Background(), b.ID, a.ID, amount, nil)
		}()
	}
	wg.Wait()

	gotA, _ := store.AccountByID(context.Background(), a.ID)
	gotB, _ := store.AccountByID(context.Background(), b.ID)
	total := gotA.Balance.Add(gotB.Balance)
	assert.True(t, total.Equal(decimal.RequireFromString("10000.00")), "money must be conserved, got %s", total)
	assert.False(t, gotA.Balance.IsNegative())
	assert.False(t, gotB.Balance.IsNegative())
}
