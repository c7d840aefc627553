package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationExecuted is published after a balance mutation has been committed,
// either by auto-execution at creation or by an agent approval.
type OperationExecuted struct {
	OperationID          int64           `json:"operation_id"`
	Type                 OperationType   `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Status               OperationStatus `json:"status"`
	AccountSourceID      int64           `json:"account_source_id"`
	AccountDestinationID *int64          `json:"account_destination_id,omitempty"`
	ExecutedAt           time.Time       `json:"executed_at"`
}
