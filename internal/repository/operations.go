package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/barakabank/bank-service/internal/models"
)

const operationColumns = `id, type, amount, status, account_source_id, account_destination_id, created_at, validated_at, executed_at`

// CreateOperation persists a new operation without touching any balance.
// Used for the PENDING path; auto-executed operations ride along with the
// balance change in ApplyChanges instead.
func (r *Repository) CreateOperation(ctx context.Context, op *models.Operation) error {
	return r.insertOperation(ctx, r.db, op)
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) insertOperation(ctx context.Context, db execer, op *models.Operation) error {
	query := `
		INSERT INTO bank.operations (type, amount, status, account_source_id, account_destination_id, created_at, validated_at, executed_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, $6, $7)
		RETURNING id, created_at`
	err := db.QueryRowContext(ctx, query, op.Type, op.Amount, op.Status,
		op.AccountSourceID, op.AccountDestinationID, op.ValidatedAt, op.ExecutedAt).
		Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}
	return nil
}

// updateOperation is a compare-and-set: the row must still be PENDING, so a
// concurrent decision on the same operation updates zero rows and aborts the
// surrounding transaction before any balance change commits.
func (r *Repository) updateOperation(ctx context.Context, db execer, op *models.Operation) error {
	query := `
		UPDATE bank.operations
		SET status = $1, validated_at = $2, executed_at = $3
		WHERE id = $4 AND status = $5`
	res, err := db.ExecContext(ctx, query, op.Status, op.ValidatedAt, op.ExecutedAt, op.ID, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update operation %d: %w", op.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrInvalidState
	}
	return nil
}

// UpdateOperation transitions an operation out of PENDING. It fails with
// models.ErrInvalidState when another decision already won.
func (r *Repository) UpdateOperation(ctx context.Context, op *models.Operation) error {
	return r.updateOperation(ctx, r.db, op)
}

// OperationByID retrieves an operation by its identifier
func (r *Repository) OperationByID(ctx context.Context, id int64) (*models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM bank.operations WHERE id = $1`
	op, err := scanOperation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find operation: %w", err)
	}
	return op, nil
}

// OperationsByAccount lists operations where the account is source or
// destination, newest first.
func (r *Repository) OperationsByAccount(ctx context.Context, accountID int64) ([]models.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM bank.operations
		WHERE account_source_id = $1 OR account_destination_id = $1
		ORDER BY created_at DESC`
	return r.queryOperations(ctx, query, accountID)
}

// OperationsByStatus lists operations with the given status, newest first.
func (r *Repository) OperationsByStatus(ctx context.Context, status models.OperationStatus) ([]models.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM bank.operations
		WHERE status = $1
		ORDER BY created_at DESC`
	return r.queryOperations(ctx, query, status)
}

// AllOperations lists every operation, newest first.
func (r *Repository) AllOperations(ctx context.Context) ([]models.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM bank.operations ORDER BY created_at DESC`
	return r.queryOperations(ctx, query)
}

// PendingOlderThan lists PENDING operations created before the cutoff,
// oldest first. Used by the review-reminder job.
func (r *Repository) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM bank.operations
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC`
	return r.queryOperations(ctx, query, models.StatusPending, cutoff)
}

func (r *Repository) queryOperations(ctx context.Context, query string, args ...any) ([]models.Operation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var operations []models.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		operations = append(operations, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}
	return operations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOperation(row scanner) (*models.Operation, error) {
	op := &models.Operation{}
	var destination sql.NullInt64
	var validatedAt, executedAt sql.NullTime
	err := row.Scan(&op.ID, &op.Type, &op.Amount, &op.Status, &op.AccountSourceID,
		&destination, &op.CreatedAt, &validatedAt, &executedAt)
	if err != nil {
		return nil, err
	}
	if destination.Valid {
		op.AccountDestinationID = &destination.Int64
	}
	if validatedAt.Valid {
		op.ValidatedAt = &validatedAt.Time
	}
	if executedAt.Valid {
		op.ExecutedAt = &executedAt.Time
	}
	return op, nil
}
