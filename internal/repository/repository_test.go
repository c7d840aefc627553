package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/barakabank/bank-service/internal/repository"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewRepository(db), mock
}

func TestApplyChangesCommitsBalancesAndOperation(t *testing.T) {
	repo, mock := newMockRepository(t)

	changes := []ledger.Change{
		{AccountID: 1, Version: 3, NewBalance: decimal.RequireFromString("700.00")},
		{AccountID: 2, Version: 8, NewBalance: decimal.RequireFromString("1300.00")},
	}
	destination := int64(2)
	now := time.Now()
	op := &models.Operation{
		Type:                 models.OperationTransfer,
		Amount:               decimal.RequireFromString("300.00"),
		Status:               models.StatusCompleted,
		AccountSourceID:      1,
		AccountDestinationID: &destination,
		ExecutedAt:           &now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bank.accounts").
		WithArgs(changes[0].NewBalance, int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bank.accounts").
		WithArgs(changes[1].NewBalance, int64(2), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bank.operations").
		WithArgs(op.Type, op.Amount, op.Status, op.AccountSourceID, op.AccountDestinationID, op.ValidatedAt, op.ExecutedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), now))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyChanges(context.Background(), changes, op))
	assert.Equal(t, int64(41), op.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangesRollsBackOnVersionConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	changes := []ledger.Change{
		{AccountID: 1, Version: 3, NewBalance: decimal.RequireFromString("700.00")},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bank.accounts").
		WithArgs(changes[0].NewBalance, int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyChanges(context.Background(), changes, nil)
	require.ErrorIs(t, err, models.ErrVersionConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangesWithoutOperationRecord(t *testing.T) {
	repo, mock := newMockRepository(t)

	changes := []ledger.Change{
		{AccountID: 5, Version: 0, NewBalance: decimal.RequireFromString("50.00")},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bank.accounts").
		WithArgs(changes[0].NewBalance, int64(5), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyChanges(context.Background(), changes, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM bank.accounts").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_number", "balance", "owner_id", "version", "created_at", "updated_at"}))

	_, err := repo.AccountByID(context.Background(), 404)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountByIDScansVersionedRow(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "account_number", "balance", "owner_id", "version", "created_at", "updated_at"}).
		AddRow(int64(7), "2210000000000007", "1234.56", int64(3), int64(12), now, now)
	mock.ExpectQuery("SELECT (.+) FROM bank.accounts").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	account, err := repo.AccountByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, int64(12), account.Version)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1234.56")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationByIDScansNullableColumns(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "type", "amount", "status", "account_source_id",
		"account_destination_id", "created_at", "validated_at", "executed_at"}).
		AddRow(int64(9), "WITHDRAWAL", "15000.00", "PENDING", int64(1), nil, now, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM bank.operations").
		WithArgs(int64(9)).
		WillReturnRows(rows)

	op, err := repo.OperationByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, op.Status)
	assert.Nil(t, op.AccountDestinationID)
	assert.Nil(t, op.ValidatedAt)
	assert.Nil(t, op.ExecutedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingOlderThanQueriesCutoff(t *testing.T) {
	repo, mock := newMockRepository(t)

	cutoff := time.Now().AddDate(0, 0, -2)
	created := cutoff.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "type", "amount", "status", "account_source_id",
		"account_destination_id", "created_at", "validated_at", "executed_at"}).
		AddRow(int64(3), "TRANSFER", "25000.00", "PENDING", int64(1), int64(2), created, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM bank.operations").
		WithArgs(models.StatusPending, cutoff).
		WillReturnRows(rows)

	ops, err := repo.PendingOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.NotNil(t, ops[0].AccountDestinationID)
	assert.Equal(t, int64(2), *ops[0].AccountDestinationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOperationRequiresPendingRow(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	op := &models.Operation{
		ID:          9,
		Status:      models.StatusRejected,
		ValidatedAt: &now,
	}
	// Zero rows means the row was already decided (or never existed); the
	// compare-and-set refuses the transition either way.
	mock.ExpectExec("UPDATE bank.operations").
		WithArgs(op.Status, op.ValidatedAt, op.ExecutedAt, op.ID, models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateOperation(context.Background(), op)
	require.ErrorIs(t, err, models.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangesAbortsWhenOperationAlreadyDecided(t *testing.T) {
	repo, mock := newMockRepository(t)

	changes := []ledger.Change{
		{AccountID: 1, Version: 3, NewBalance: decimal.RequireFromString("700.00")},
	}
	now := time.Now()
	op := &models.Operation{
		ID:              9,
		Type:            models.OperationWithdrawal,
		Amount:          decimal.RequireFromString("300.00"),
		Status:          models.StatusApproved,
		AccountSourceID: 1,
		ValidatedAt:     &now,
		ExecutedAt:      &now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bank.accounts").
		WithArgs(changes[0].NewBalance, int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bank.operations").
		WithArgs(op.Status, op.ValidatedAt, op.ExecutedAt, op.ID, models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyChanges(context.Background(), changes, op)
	require.ErrorIs(t, err, models.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithAccountCommitsBoth(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	user := &models.User{Email: "new@baraka.example", FullName: "New Client", PasswordHash: "hash",
		Role: models.RoleClient, Active: true}
	account := &models.Account{AccountNumber: "2210000000000001", Balance: decimal.Zero}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bank.users").
		WithArgs(user.Email, user.FullName, user.PasswordHash, user.Role, user.Active).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectQuery("INSERT INTO bank.accounts").
		WithArgs(account.AccountNumber, account.Balance, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), now, now))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateUserWithAccount(context.Background(), user, account))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, int64(7), account.OwnerID)
	assert.Equal(t, int64(3), account.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithAccountRollsBackOnNumberCollision(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	user := &models.User{Email: "new@baraka.example", FullName: "New Client", PasswordHash: "hash",
		Role: models.RoleClient, Active: true}
	account := &models.Account{AccountNumber: "2210000000000001", Balance: decimal.Zero}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bank.users").
		WithArgs(user.Email, user.FullName, user.PasswordHash, user.Role, user.Active).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectQuery("INSERT INTO bank.accounts").
		WithArgs(account.AccountNumber, account.Balance, int64(7)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_account_number_key"})
	mock.ExpectRollback()

	err := repo.CreateUserWithAccount(context.Background(), user, account)
	require.ErrorIs(t, err, models.ErrDuplicateAccountNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
