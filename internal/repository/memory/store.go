package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/models"
)

// Store is an in-memory implementation of the ledger and service storage
// contracts. It is safe for concurrent use and keeps the same atomicity
// guarantees as the postgres repository: ApplyChanges either applies every
// balance change and the operation record, or nothing.
type Store struct {
	mu          sync.Mutex
	users       map[int64]*models.User
	accounts    map[int64]*models.Account
	operations  map[int64]*models.Operation
	documents   map[int64]*models.Document
	validations map[int64]*models.ValidationResult // keyed by operation ID
	nextUser    int64
	nextAccount int64
	nextOp      int64
	nextDoc     int64
	nextResult  int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*models.User),
		accounts:    make(map[int64]*models.Account),
		operations:  make(map[int64]*models.Operation),
		documents:   make(map[int64]*models.Document),
		validations: make(map[int64]*models.ValidationResult),
	}
}

// ApplyChanges implements ledger.Store.
func (s *Store) ApplyChanges(ctx context.Context, changes []ledger.Change, op *models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every change before applying any, so a conflict leaves
	// the store untouched.
	for _, change := range changes {
		account, ok := s.accounts[change.AccountID]
		if !ok {
			return models.ErrNotFound
		}
		if account.Version != change.Version {
			return models.ErrVersionConflict
		}
	}
	if op != nil && op.ID != 0 {
		stored, ok := s.operations[op.ID]
		if !ok {
			return models.ErrNotFound
		}
		// Same compare-and-set as the postgres repository: only a
		// PENDING operation may ride along with a balance change.
		if stored.Status != models.StatusPending {
			return models.ErrInvalidState
		}
	}

	now := time.Now()
	for _, change := range changes {
		account := s.accounts[change.AccountID]
		account.Balance = change.NewBalance
		account.Version++
		account.UpdatedAt = now
	}

	if op != nil {
		if op.ID == 0 {
			s.nextOp++
			op.ID = s.nextOp
			op.CreatedAt = now
		}
		copied := *op
		s.operations[op.ID] = &copied
	}
	return nil
}

// AccountByID implements ledger.Store.
func (s *Store) AccountByID(ctx context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

// CreateAccount stores a new account.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccount++
	account.ID = s.nextAccount
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

// AccountByNumber looks an account up by its unique account number.
func (s *Store) AccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.AccountNumber == number {
			copied := *account
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

// AccountByOwner looks an account up by its owning user.
func (s *Store) AccountByOwner(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.OwnerID == userID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

// CreateOperation stores a new operation without touching balances.
func (s *Store) CreateOperation(ctx context.Context, op *models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOp++
	op.ID = s.nextOp
	op.CreatedAt = time.Now()
	copied := *op
	s.operations[op.ID] = &copied
	return nil
}

// UpdateOperation transitions an operation out of PENDING; a concurrent
// decision that already won surfaces as models.ErrInvalidState.
func (s *Store) UpdateOperation(ctx context.Context, op *models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.operations[op.ID]
	if !ok {
		return models.ErrNotFound
	}
	if stored.Status != models.StatusPending {
		return models.ErrInvalidState
	}
	copied := *op
	s.operations[op.ID] = &copied
	return nil
}

// OperationByID retrieves an operation by identifier.
func (s *Store) OperationByID(ctx context.Context, id int64) (*models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *op
	return &copied, nil
}

// OperationsByAccount lists operations touching the account, newest first.
func (s *Store) OperationsByAccount(ctx context.Context, accountID int64) ([]models.Operation, error) {
	return s.filterOperations(func(op *models.Operation) bool {
		if op.AccountSourceID == accountID {
			return true
		}
		return op.AccountDestinationID != nil && *op.AccountDestinationID == accountID
	}, true), nil
}

// OperationsByStatus lists operations with the given status, newest first.
func (s *Store) OperationsByStatus(ctx context.Context, status models.OperationStatus) ([]models.Operation, error) {
	return s.filterOperations(func(op *models.Operation) bool {
		return op.Status == status
	}, true), nil
}

// AllOperations lists every operation, newest first.
func (s *Store) AllOperations(ctx context.Context) ([]models.Operation, error) {
	return s.filterOperations(func(*models.Operation) bool { return true }, true), nil
}

// PendingOlderThan lists PENDING operations created before cutoff, oldest first.
func (s *Store) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Operation, error) {
	return s.filterOperations(func(op *models.Operation) bool {
		return op.Status == models.StatusPending && op.CreatedAt.Before(cutoff)
	}, false), nil
}

func (s *Store) filterOperations(keep func(*models.Operation) bool, newestFirst bool) []models.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Operation
	for _, op := range s.operations {
		if keep(op) {
			result = append(result, *op)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			if newestFirst {
				return result[i].ID > result[j].ID
			}
			return result[i].ID < result[j].ID
		}
		if newestFirst {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// CreateUserWithAccount creates a user and their account atomically; a
// colliding account number leaves neither behind.
func (s *Store) CreateUserWithAccount(ctx context.Context, user *models.User, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.AccountNumber == account.AccountNumber {
			return models.ErrDuplicateAccountNumber
		}
	}

	now := time.Now()
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = now
	copiedUser := *user
	s.users[user.ID] = &copiedUser

	s.nextAccount++
	account.ID = s.nextAccount
	account.OwnerID = user.ID
	account.CreatedAt = now
	account.UpdatedAt = now
	copiedAccount := *account
	s.accounts[account.ID] = &copiedAccount
	return nil
}

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = time.Now()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// UserByEmail retrieves a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

// UserByID retrieves a user by identifier.
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// AllUsers lists every user, oldest first.
func (s *Store) AllUsers(ctx context.Context) ([]models.User, error) {
	return s.filterUsers(func(*models.User) bool { return true }), nil
}

// UsersByRole lists users holding the given role.
func (s *Store) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.filterUsers(func(u *models.User) bool { return u.Role == role }), nil
}

func (s *Store) filterUsers(keep func(*models.User) bool) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.User
	for _, user := range s.users {
		if keep(user) {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// SetUserActive flips the active flag for a user.
func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	user.Active = active
	return nil
}

// CreateDocument stores a new document record.
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDoc++
	doc.ID = s.nextDoc
	doc.UploadedAt = time.Now()
	copied := *doc
	s.documents[doc.ID] = &copied
	return nil
}

// DocumentByID retrieves a document by identifier.
func (s *Store) DocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// DocumentsByOperation lists documents attached to an operation in upload order.
func (s *Store) DocumentsByOperation(ctx context.Context, operationID int64) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Document
	for _, doc := range s.documents {
		if doc.OperationID == operationID {
			result = append(result, *doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountDocuments returns the number of documents attached to an operation.
func (s *Store) CountDocuments(ctx context.Context, operationID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, doc := range s.documents {
		if doc.OperationID == operationID {
			count++
		}
	}
	return count, nil
}

// DeleteDocument removes a document record.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

// SaveValidationResult upserts the advisory result for an operation.
func (s *Store) SaveValidationResult(ctx context.Context, result *models.ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.validations[result.OperationID]; ok {
		result.ID = existing.ID
	} else {
		s.nextResult++
		result.ID = s.nextResult
	}
	copied := *result
	s.validations[result.OperationID] = &copied
	return nil
}

// ValidationResultByOperation retrieves the advisory result for an operation.
func (s *Store) ValidationResultByOperation(ctx context.Context, operationID int64) (*models.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.validations[operationID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

// ValidationStats counts validation results per decision.
func (s *Store) ValidationStats(ctx context.Context) (*models.ValidationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.ValidationStats{}
	for _, result := range s.validations {
		switch result.Decision {
		case models.DecisionApprove:
			stats.Approved++
		case models.DecisionReject:
			stats.Rejected++
		case models.DecisionNeedHumanReview:
			stats.HumanReview++
		}
	}
	return stats, nil
}

// Compile-time check against the ledger storage contract.
var _ ledger.Store = (*Store)(nil)
