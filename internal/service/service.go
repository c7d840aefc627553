package service

import (
	"context"
	"time"

	"github.com/barakabank/bank-service/internal/config"
	"github.com/barakabank/bank-service/internal/decision"
	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is the persistence the service requires beyond the ledger's own
// contract. Implemented by repository.Repository and memory.Store.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	CreateUserWithAccount(ctx context.Context, user *models.User, account *models.Account) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	AllUsers(ctx context.Context) ([]models.User, error)
	UsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) error

	CreateAccount(ctx context.Context, account *models.Account) error
	AccountByID(ctx context.Context, id int64) (*models.Account, error)
	AccountByNumber(ctx context.Context, number string) (*models.Account, error)
	AccountByOwner(ctx context.Context, userID int64) (*models.Account, error)

	CreateOperation(ctx context.Context, op *models.Operation) error
	UpdateOperation(ctx context.Context, op *models.Operation) error
	OperationByID(ctx context.Context, id int64) (*models.Operation, error)
	OperationsByAccount(ctx context.Context, accountID int64) ([]models.Operation, error)
	OperationsByStatus(ctx context.Context, status models.OperationStatus) ([]models.Operation, error)
	AllOperations(ctx context.Context) ([]models.Operation, error)
	PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Operation, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	DocumentByID(ctx context.Context, id int64) (*models.Document, error)
	DocumentsByOperation(ctx context.Context, operationID int64) ([]models.Document, error)
	CountDocuments(ctx context.Context, operationID int64) (int64, error)
	DeleteDocument(ctx context.Context, id int64) error

	SaveValidationResult(ctx context.Context, result *models.ValidationResult) error
	ValidationResultByOperation(ctx context.Context, operationID int64) (*models.ValidationResult, error)
	ValidationStats(ctx context.Context) (*models.ValidationStats, error)
}

// Publisher emits domain events after money has moved. A nil publisher
// disables publishing.
type Publisher interface {
	Publish(topic string, event any) error
}

// Notifier sends user-facing notices. A nil notifier disables them.
type Notifier interface {
	SendOperationNotice(to, fullName string, op *models.Operation) error
}

type executor func(ctx context.Context, op *models.Operation) error

// Service handles business logic
type Service struct {
	store     Store
	ledger    *ledger.Ledger
	log       *logrus.Logger
	config    *config.Config
	threshold decimal.Decimal
	source    decision.Source
	publisher Publisher
	notifier  Notifier
	executors map[models.OperationType]executor
}

// NewService initializes a new service. Publisher and notifier may be nil.
func NewService(store Store, ldg *ledger.Ledger, cfg *config.Config, log *logrus.Logger,
	source decision.Source, publisher Publisher, notifier Notifier) *Service {
	s := &Service{
		store:     store,
		ledger:    ldg,
		log:       log,
		config:    cfg,
		threshold: cfg.ApprovalThreshold,
		source:    source,
		publisher: publisher,
		notifier:  notifier,
	}
	// Dispatch table mapping operation type to its ledger action. The
	// operation record rides along in the same atomic unit as the
	// balance change.
	s.executors = map[models.OperationType]executor{
		models.OperationDeposit: func(ctx context.Context, op *models.Operation) error {
			_, err := s.ledger.Credit(ctx, op.AccountSourceID, op.Amount, op)
			return err
		},
		models.OperationWithdrawal: func(ctx context.Context, op *models.Operation) error {
			_, err := s.ledger.Debit(ctx, op.AccountSourceID, op.Amount, op)
			return err
		},
		models.OperationTransfer: func(ctx context.Context, op *models.Operation) error {
			return s.ledger.Transfer(ctx, op.AccountSourceID, *op.AccountDestinationID, op.Amount, op)
		},
	}
	return s
}
