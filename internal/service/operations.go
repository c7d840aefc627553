package service

import (
	"context"
	"fmt"
	"time"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
)

// CreateOperation validates and classifies a requested operation for the
// caller's account. At or below the approval threshold the ledger is mutated
// synchronously and the operation is stored COMPLETED; above it the
// operation is stored PENDING and no money moves until an agent decides.
func (s *Service) CreateOperation(ctx context.Context, identity models.Identity, req OperationRequest) (*models.Operation, error) {
	if err := validateAmount(req.amount()); err != nil {
		return nil, err
	}
	if identity.AccountID == 0 {
		return nil, fmt.Errorf("caller has no account: %w", models.ErrNotFound)
	}

	source, err := s.store.AccountByID(ctx, identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("source account: %w", err)
	}

	op := &models.Operation{
		Type:            req.operationType(),
		Amount:          req.amount(),
		AccountSourceID: source.ID,
	}

	if transfer, ok := req.(Transfer); ok {
		destination, err := s.store.AccountByNumber(ctx, transfer.DestinationAccountNumber)
		if err != nil {
			return nil, fmt.Errorf("destination account: %w", err)
		}
		if destination.ID == source.ID {
			return nil, models.ErrSameAccountTransfer
		}
		op.AccountDestinationID = &destination.ID
	}

	// Balance pre-check before any record is persisted. The ledger
	// re-checks under lock, so a concurrent debit can still turn an
	// auto-execution into ErrInsufficientFunds.
	if op.Type != models.OperationDeposit && source.Balance.LessThan(op.Amount) {
		return nil, models.ErrInsufficientFunds
	}

	if op.Amount.LessThanOrEqual(s.threshold) {
		now := time.Now()
		op.Status = models.StatusCompleted
		op.ExecutedAt = &now
		if err := s.executors[op.Type](ctx, op); err != nil {
			return nil, err
		}
		s.log.Infof("Operation %d (%s %s) auto-executed for account %d", op.ID, op.Type, op.Amount, source.ID)
		s.afterExecution(ctx, op)
		return op, nil
	}

	op.Status = models.StatusPending
	if err := s.store.CreateOperation(ctx, op); err != nil {
		return nil, err
	}
	s.log.Infof("Operation %d (%s %s) pending review for account %d", op.ID, op.Type, op.Amount, source.ID)
	return op, nil
}

// ApproveOperation executes a pending operation and marks it APPROVED.
// Approval of a large operation requires at least one attached document, and
// sufficient funds are re-validated at approval time; on failure the
// operation stays PENDING and every balance is untouched.
func (s *Service) ApproveOperation(ctx context.Context, identity models.Identity, operationID int64) (*models.Operation, error) {
	op, err := s.store.OperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != models.StatusPending {
		return nil, models.ErrInvalidState
	}

	if op.Amount.GreaterThan(s.threshold) {
		count, err := s.store.CountDocuments(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, models.ErrMissingDocumentation
		}
	}

	now := time.Now()
	op.Status = models.StatusApproved
	op.ValidatedAt = &now
	op.ExecutedAt = &now
	// The ledger re-reads balances under lock and persists the status
	// change together with the balance change; when it fails, the stored
	// record is still PENDING.
	if err := s.executors[op.Type](ctx, op); err != nil {
		return nil, err
	}

	s.log.Infof("Operation %d approved by user %d", op.ID, identity.UserID)
	s.afterExecution(ctx, op)
	return op, nil
}

// RejectOperation marks a pending operation REJECTED. No balance is ever
// touched for a rejected operation, and REJECTED is a closed terminal state.
func (s *Service) RejectOperation(ctx context.Context, identity models.Identity, operationID int64) (*models.Operation, error) {
	op, err := s.store.OperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != models.StatusPending {
		return nil, models.ErrInvalidState
	}

	now := time.Now()
	op.Status = models.StatusRejected
	op.ValidatedAt = &now
	if err := s.store.UpdateOperation(ctx, op); err != nil {
		return nil, err
	}

	s.log.Infof("Operation %d rejected by user %d", op.ID, identity.UserID)
	return op, nil
}

// AccountOperations lists the caller's operations, newest first.
func (s *Service) AccountOperations(ctx context.Context, identity models.Identity) ([]models.Operation, error) {
	if identity.AccountID == 0 {
		return nil, fmt.Errorf("caller has no account: %w", models.ErrNotFound)
	}
	return s.store.OperationsByAccount(ctx, identity.AccountID)
}

// PendingOperations lists every PENDING operation, newest first.
func (s *Service) PendingOperations(ctx context.Context) ([]models.Operation, error) {
	return s.store.OperationsByStatus(ctx, models.StatusPending)
}

// AllOperations lists every operation, newest first.
func (s *Service) AllOperations(ctx context.Context) ([]models.Operation, error) {
	return s.store.AllOperations(ctx)
}

// afterExecution publishes and notifies once money has moved. Failures here
// are logged and never fail the operation.
func (s *Service) afterExecution(ctx context.Context, op *models.Operation) {
	if s.publisher != nil {
		event := models.OperationExecuted{
			OperationID:          op.ID,
			Type:                 op.Type,
			Amount:               op.Amount,
			Status:               op.Status,
			AccountSourceID:      op.AccountSourceID,
			AccountDestinationID: op.AccountDestinationID,
			ExecutedAt:           *op.ExecutedAt,
		}
		if err := s.publisher.Publish("operation_executed", event); err != nil {
			s.log.Errorf("Failed to publish execution event for operation %d: %v", op.ID, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifyOwner(ctx, op); err != nil {
			s.log.Errorf("Failed to notify owner of operation %d: %v", op.ID, err)
		}
	}
}

func (s *Service) notifyOwner(ctx context.Context, op *models.Operation) error {
	account, err := s.store.AccountByID(ctx, op.AccountSourceID)
	if err != nil {
		return err
	}
	owner, err := s.store.UserByID(ctx, account.OwnerID)
	if err != nil {
		return err
	}
	return s.notifier.SendOperationNotice(owner.Email, owner.FullName, op)
}

// validateAmount rejects non-positive amounts and amounts finer than the
// fixed two-decimal money scale.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &models.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if amount.Exponent() < -2 {
		return &models.ValidationError{Field: "amount", Reason: "at most two decimal places allowed"}
	}
	return nil
}
