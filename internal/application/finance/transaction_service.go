package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionAggregate is the aggregate type carried by transaction change events
const TransactionAggregate = "Transaction"

var transactionSearchFields = []string{"description", "category", "recorded_by"}

// TransactionService handles the manual cash ledger
type TransactionService struct {
	txRepo    finance.TransactionRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// TransactionServiceOption is a functional option for configuring TransactionService
type TransactionServiceOption func(*TransactionService)

// WithClock sets the clock used for default dates
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *TransactionService) {
		s.now = now
	}
}

// NewTransactionService creates a new TransactionService. publisher may be nil.
func NewTransactionService(
	txRepo finance.TransactionRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...TransactionServiceOption,
) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TransactionService{
		txRepo:    txRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a pending entry
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	tx, err := finance.NewTransaction(req.details(s.today()))
	if err != nil {
		return nil, err
	}

	created, err := s.txRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created.ID, shared.ChangeCreated)

	response := ToTransactionResponse(created)
	return &response, nil
}

// CreateBatch validates every request first, then stores all entries in one transaction
func (s *TransactionService) CreateBatch(ctx context.Context, reqs []CreateTransactionRequest) ([]TransactionResponse, error) {
	today := s.today()
	txs := make([]*finance.Transaction, 0, len(reqs))
	for _, req := range reqs {
		tx, err := finance.NewTransaction(req.details(today))
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	created, err := s.txRepo.CreateBatch(ctx, txs)
	if err != nil {
		return nil, err
	}
	for _, tx := range created {
		s.notify(ctx, tx.ID, shared.ChangeCreated)
	}
	return ToTransactionResponses(created), nil
}

// GetByID retrieves an entry by ID
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}

	response := ToTransactionResponse(tx)
	return &response, nil
}

// List retrieves entries with filtering and pagination
func (s *TransactionService) List(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Search != "" {
		found, err := s.txRepo.Search(ctx, filter.Search, transactionSearchFields)
		if err != nil {
			return nil, 0, err
		}
		matched := make([]*finance.Transaction, 0, len(found))
		for _, tx := range found {
			if filter.Type != "" && string(tx.Type) != filter.Type {
				continue
			}
			if filter.Status != "" && string(tx.Status) != filter.Status {
				continue
			}
			matched = append(matched, tx)
		}
		return ToTransactionResponses(shared.PageSlice(matched, filter.Page, filter.PageSize)), int64(len(matched)), nil
	}

	query := shared.DefaultQuery()
	if filter.OrderBy != "" {
		query.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		query.OrderDir = filter.OrderDir
	}
	if filter.Type != "" {
		query.Where["transaction_type"] = filter.Type
	}
	if filter.Status != "" {
		query.Where["status"] = filter.Status
	}

	txs, err := s.txRepo.FindAll(ctx, query.Paged(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txRepo.Count(ctx, query.Where)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}

// Update applies a partial update
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(tx *finance.Transaction) error {
		return tx.Apply(req.merge(tx.Details()))
	})
}

// Complete settles a pending entry
func (s *TransactionService) Complete(ctx context.Context, id uuid.UUID, req CompleteTransactionRequest) (*TransactionResponse, error) {
	date := req.PaymentDate
	if date == "" {
		date = s.today()
	}
	return s.mutate(ctx, id, func(tx *finance.Transaction) error {
		return tx.Complete(date)
	})
}

// Cancel voids an entry
func (s *TransactionService) Cancel(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(tx *finance.Transaction) error {
		return tx.Cancel()
	})
}

// Delete permanently removes an entry
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.txRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}
	s.notify(ctx, id, shared.ChangeDeleted)
	return nil
}

// All returns every entry for the ledger report
func (s *TransactionService) All(ctx context.Context) ([]*finance.Transaction, error) {
	return s.txRepo.FindAll(ctx, shared.DefaultQuery())
}

func (s *TransactionService) mutate(ctx context.Context, id uuid.UUID, apply func(*finance.Transaction) error) (*TransactionResponse, error) {
	updated, err := s.txRepo.Update(ctx, id, apply)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, id, shared.ChangeUpdated)

	response := ToTransactionResponse(updated)
	return &response, nil
}

func (s *TransactionService) today() string {
	return s.now().UTC().Format(shared.DateLayout)
}

func (s *TransactionService) notify(ctx context.Context, id uuid.UUID, op shared.ChangeOperation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, shared.NewRecordChangedEvent(TransactionAggregate, id, op)); err != nil {
		s.logger.Warn("Failed to publish transaction change", zap.String("transaction_id", id.String()), zap.Error(err))
	}
}
