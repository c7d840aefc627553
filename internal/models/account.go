package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the balance for a single user. The balance is only ever
// changed through the ledger; Version backs optimistic locking on updates.
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	OwnerID       int64           `json:"owner_id"`
	Version       int64           `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
