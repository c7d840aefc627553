package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/lib/pq"
)

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO bank.users (email, full_name, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.FullName, user.PasswordHash, user.Role, user.Active).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateUserWithAccount creates a user and their account in one transaction,
// so a failed account insert never leaves an account-less user behind. A
// collision on the unique account number surfaces as
// models.ErrDuplicateAccountNumber for the caller to retry with a fresh one.
func (r *Repository) CreateUserWithAccount(ctx context.Context, user *models.User, account *models.Account) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	userQuery := `
		INSERT INTO bank.users (email, full_name, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, userQuery, user.Email, user.FullName, user.PasswordHash, user.Role, user.Active).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		err = fmt.Errorf("failed to create user: %w", err)
		return err
	}

	account.OwnerID = user.ID
	accountQuery := `
		INSERT INTO bank.accounts (account_number, balance, owner_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	if err = tx.QueryRowContext(ctx, accountQuery, account.AccountNumber, account.Balance, account.OwnerID).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "account_number") {
			err = models.ErrDuplicateAccountNumber
			return err
		}
		err = fmt.Errorf("failed to create account: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

// UserByEmail retrieves a user by email
func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, `email = $1`, email)
}

// UserByID retrieves a user by identifier
func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.userBy(ctx, `id = $1`, id)
}

func (r *Repository) userBy(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, full_name, password_hash, role, active, created_at
		FROM bank.users
		WHERE ` + where
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// AllUsers lists every user, oldest first
func (r *Repository) AllUsers(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx, `
		SELECT id, email, full_name, password_hash, role, active, created_at
		FROM bank.users
		ORDER BY created_at ASC`)
}

// UsersByRole lists users holding the given role
func (r *Repository) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.queryUsers(ctx, `
		SELECT id, email, full_name, password_hash, role, active, created_at
		FROM bank.users
		WHERE role = $1
		ORDER BY created_at ASC`, role)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
			&user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// SetUserActive flips the active flag for a user
func (r *Repository) SetUserActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bank.users SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
