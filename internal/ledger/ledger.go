package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// maxAttempts bounds the retry loop on optimistic-concurrency conflicts
// before surfacing ErrContention.
const maxAttempts = 3

// Change is a versioned balance update for a single account.
type Change struct {
	AccountID  int64
	Version    int64
	NewBalance decimal.Decimal
}

// Store is the persistence contract the ledger requires. ApplyChanges must
// apply every change, and the optional operation record, as one atomic unit;
// it returns models.ErrVersionConflict if any version check fails, leaving
// nothing applied.
type Store interface {
	AccountByID(ctx context.Context, id int64) (*models.Account, error)
	ApplyChanges(ctx context.Context, changes []Change, op *models.Operation) error
}

// Ledger owns account balances and their atomic mutation. Mutations on the
// same account are serialized through a per-account mutex; concurrent storage
// writers are handled by the version check in the store.
type Ledger struct {
	store Store
	log   *logrus.Logger
	muMap map[int64]*sync.Mutex
	mapMu sync.Mutex
}

// NewLedger initializes a new ledger over the given store.
func NewLedger(store Store, log *logrus.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log,
		muMap: make(map[int64]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID int64) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	mu, ok := l.muMap[accountID]
	if !ok {
		mu = &sync.Mutex{}
		l.muMap[accountID] = mu
	}
	return mu
}

// lockAccounts acquires the per-account locks in ascending account ID order
// so concurrently transferring pairs cannot deadlock.
func (l *Ledger) lockAccounts(ids ...int64) func() {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		mu := l.accountLock(id)
		mu.Lock()
		locks = append(locks, mu)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// Credit adds amount to the account balance and returns the new balance.
// If op is non-nil, the operation record is persisted in the same atomic
// unit as the balance change.
func (l *Ledger) Credit(ctx context.Context, accountID int64, amount decimal.Decimal, op *models.Operation) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, &models.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	unlock := l.lockAccounts(accountID)
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		account, err := l.store.AccountByID(ctx, accountID)
		if err != nil {
			return decimal.Zero, err
		}

		newBalance := account.Balance.Add(amount)
		change := Change{AccountID: accountID, Version: account.Version, NewBalance: newBalance}
		if err := l.store.ApplyChanges(ctx, []Change{change}, op); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				l.log.Warnf("Version conflict crediting account %d, attempt %d", accountID, attempt+1)
				continue
			}
			return decimal.Zero, err
		}
		return newBalance, nil
	}
	return decimal.Zero, fmt.Errorf("credit account %d: %w", accountID, models.ErrContention)
}

// Debit subtracts amount from the account balance and returns the new
// balance. It fails with models.ErrInsufficientFunds if the balance is
// smaller than amount; the balance never goes negative.
func (l *Ledger) Debit(ctx context.Context, accountID int64, amount decimal.Decimal, op *models.Operation) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, &models.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	unlock := l.lockAccounts(accountID)
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		account, err := l.store.AccountByID(ctx, accountID)
		if err != nil {
			return decimal.Zero, err
		}
		if account.Balance.LessThan(amount) {
			return decimal.Zero, models.ErrInsufficientFunds
		}

		newBalance := account.Balance.Sub(amount)
		change := Change{AccountID: accountID, Version: account.Version, NewBalance: newBalance}
		if err := l.store.ApplyChanges(ctx, []Change{change}, op); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				l.log.Warnf("Version conflict debiting account %d, attempt %d", accountID, attempt+1)
				continue
			}
			return decimal.Zero, err
		}
		return newBalance, nil
	}
	return decimal.Zero, fmt.Errorf("debit account %d: %w", accountID, models.ErrContention)
}

// Transfer atomically debits the source account and credits the destination.
// Either both balance changes apply or neither does.
func (l *Ledger) Transfer(ctx context.Context, sourceID, destinationID int64, amount decimal.Decimal, op *models.Operation) error {
	if !amount.IsPositive() {
		return &models.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if sourceID == destinationID {
		return models.ErrSameAccountTransfer
	}

	unlock := l.lockAccounts(sourceID, destinationID)
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		source, err := l.store.AccountByID(ctx, sourceID)
		if err != nil {
			return err
		}
		destination, err := l.store.AccountByID(ctx, destinationID)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(amount) {
			return models.ErrInsufficientFunds
		}

		changes := []Change{
			{AccountID: sourceID, Version: source.Version, NewBalance: source.Balance.Sub(amount)},
			{AccountID: destinationID, Version: destination.Version, NewBalance: destination.Balance.Add(amount)},
		}
		// Apply in ascending account ID order so concurrent storage
		// transactions take row locks in the same order.
		sort.Slice(changes, func(i, j int) bool { return changes[i].AccountID < changes[j].AccountID })

		if err := l.store.ApplyChanges(ctx, changes, op); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				l.log.Warnf("Version conflict transferring %s from account %d to %d, attempt %d",
					amount, sourceID, destinationID, attempt+1)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("transfer from account %d to %d: %w", sourceID, destinationID, models.ErrContention)
}
