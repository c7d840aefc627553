package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType identifies the kind of money movement an operation requests.
type OperationType string

const (
	OperationDeposit    OperationType = "DEPOSIT"
	OperationWithdrawal OperationType = "WITHDRAWAL"
	OperationTransfer   OperationType = "TRANSFER"
)

// OperationStatus is the lifecycle state of an operation.
// PENDING is the only state an operation can leave; the rest are terminal.
type OperationStatus string

const (
	StatusPending   OperationStatus = "PENDING"
	StatusApproved  OperationStatus = "APPROVED"
	StatusRejected  OperationStatus = "REJECTED"
	StatusCompleted OperationStatus = "COMPLETED"
)

// Terminal reports whether no further transition is possible from s.
func (s OperationStatus) Terminal() bool {
	return s != StatusPending
}

// Operation represents a requested or executed movement of funds.
// AccountDestinationID is set iff Type is TRANSFER. ExecutedAt is set iff
// the balance mutation has actually been applied.
type Operation struct {
	ID                   int64           `json:"id"`
	Type                 OperationType   `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Status               OperationStatus `json:"status"`
	AccountSourceID      int64           `json:"account_source_id"`
	AccountDestinationID *int64          `json:"account_destination_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	ValidatedAt          *time.Time      `json:"validated_at,omitempty"`
	ExecutedAt           *time.Time      `json:"executed_at,omitempty"`
}
