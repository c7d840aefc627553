package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barakabank/bank-service/internal/models"
)

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO bank.accounts (account_number, balance, owner_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, account.AccountNumber, account.Balance, account.OwnerID).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// AccountByID retrieves an account by its identifier
func (r *Repository) AccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, account_number, balance, owner_id, version, created_at, updated_at
		FROM bank.accounts
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&account.ID, &account.AccountNumber, &account.Balance, &account.OwnerID,
			&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// AccountByNumber retrieves an account by its unique account number
func (r *Repository) AccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, account_number, balance, owner_id, version, created_at, updated_at
		FROM bank.accounts
		WHERE account_number = $1`
	err := r.db.QueryRowContext(ctx, query, number).
		Scan(&account.ID, &account.AccountNumber, &account.Balance, &account.OwnerID,
			&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// AccountByOwner retrieves the account owned by the given user
func (r *Repository) AccountByOwner(ctx context.Context, userID int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, account_number, balance, owner_id, version, created_at, updated_at
		FROM bank.accounts
		WHERE owner_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&account.ID, &account.AccountNumber, &account.Balance, &account.OwnerID,
			&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}
