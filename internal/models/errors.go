package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unknown account, operation, user or document.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds indicates a debit larger than the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccountTransfer indicates a transfer where source and destination resolve to the same account.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	// ErrInvalidState indicates a transition attempted on a non-PENDING operation.
	ErrInvalidState = errors.New("operation is not pending")
	// ErrMissingDocumentation indicates approval of a large operation without supporting documents.
	ErrMissingDocumentation = errors.New("supporting document required for operations above the threshold")
	// ErrVersionConflict indicates an optimistic-concurrency conflict on a balance update.
	ErrVersionConflict = errors.New("account version conflict")
	// ErrContention indicates the bounded retry on version conflicts was exhausted.
	ErrContention = errors.New("account update contention")
	// ErrForbidden indicates the caller's identity lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateAccountNumber indicates a generated account number collided with an existing one.
	ErrDuplicateAccountNumber = errors.New("account number already in use")
)

// ValidationError reports bad input rejected before any persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
