package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ApplyChanges applies versioned balance updates and, when op is non-nil,
// persists the operation record, all inside one transaction. A failed
// version check rolls everything back and returns models.ErrVersionConflict.
func (r *Repository) ApplyChanges(ctx context.Context, changes []ledger.Change, op *models.Operation) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	const update = `
		UPDATE bank.accounts
		SET balance = $1, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND version = $3`
	for _, change := range changes {
		res, execErr := tx.ExecContext(ctx, update, change.NewBalance, change.AccountID, change.Version)
		if execErr != nil {
			err = fmt.Errorf("failed to update balance of account %d: %w", change.AccountID, execErr)
			return err
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("failed to read rows affected: %w", raErr)
			return err
		}
		if affected == 0 {
			err = models.ErrVersionConflict
			return err
		}
	}

	if op != nil {
		if op.ID == 0 {
			if err = r.insertOperation(ctx, tx, op); err != nil {
				return err
			}
		} else {
			if err = r.updateOperation(ctx, tx, op); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit balance changes: %w", err)
	}
	return nil
}

var _ ledger.Store = (*Repository)(nil)
