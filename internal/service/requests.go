package service

import (
	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
)

// OperationRequest is a sealed set of operation variants. Each variant
// carries exactly the fields its kind needs; only a transfer names a
// destination.
type OperationRequest interface {
	operationType() models.OperationType
	amount() decimal.Decimal
}

// Deposit credits the caller's account.
type Deposit struct {
	Amount decimal.Decimal
}

// Withdrawal debits the caller's account.
type Withdrawal struct {
	Amount decimal.Decimal
}

// Transfer moves money from the caller's account to another account,
// addressed by its account number.
type Transfer struct {
	Amount                   decimal.Decimal
	DestinationAccountNumber string
}

func (d Deposit) operationType() models.OperationType    { return models.OperationDeposit }
func (w Withdrawal) operationType() models.OperationType { return models.OperationWithdrawal }
func (t Transfer) operationType() models.OperationType   { return models.OperationTransfer }

func (d Deposit) amount() decimal.Decimal    { return d.Amount }
func (w Withdrawal) amount() decimal.Decimal { return w.Amount }
func (t Transfer) amount() decimal.Decimal   { return t.Amount }
