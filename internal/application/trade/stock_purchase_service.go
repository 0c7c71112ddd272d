package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"go.uber.org/zap"
)

var stockPurchaseSearchFields = []string{"supplier_name", "notes"}

// StockPurchaseService handles stock bought from suppliers
type StockPurchaseService struct {
	purchaseRepo trade.StockPurchaseRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
	opts         options
}

// NewStockPurchaseService creates a new StockPurchaseService. publisher may be nil.
func NewStockPurchaseService(
	purchaseRepo trade.StockPurchaseRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) *StockPurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockPurchaseService{
		purchaseRepo: purchaseRepo,
		publisher:    publisher,
		logger:       logger,
		opts:         buildOptions(opts),
	}
}

// Create records a pending purchase
func (s *StockPurchaseService) Create(ctx context.Context, req CreateStockPurchaseRequest) (*StockPurchaseResponse, error) {
	sp, err := trade.NewStockPurchase(req.details(s.opts.today()))
	if err != nil {
		return nil, err
	}

	created, err := s.purchaseRepo.Create(ctx, sp)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created.ID, shared.ChangeCreated)

	response := ToStockPurchaseResponse(created)
	return &response, nil
}

// CreateBatch validates every request first, then stores all purchases in one transaction
func (s *StockPurchaseService) CreateBatch(ctx context.Context, reqs []CreateStockPurchaseRequest) ([]StockPurchaseResponse, error) {
	today := s.opts.today()
	purchases := make([]*trade.StockPurchase, 0, len(reqs))
	for _, req := range reqs {
		sp, err := trade.NewStockPurchase(req.details(today))
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, sp)
	}

	created, err := s.purchaseRepo.CreateBatch(ctx, purchases)
	if err != nil {
		return nil, err
	}
	for _, sp := range created {
		s.notify(ctx, sp.ID, shared.ChangeCreated)
	}
	return ToStockPurchaseResponses(created), nil
}

// GetByID retrieves a purchase by ID
func (s *StockPurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*StockPurchaseResponse, error) {
	sp, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Stock purchase not found")
	}

	response := ToStockPurchaseResponse(sp)
	return &response, nil
}

// List retrieves purchases with filtering and pagination
func (s *StockPurchaseService) List(ctx context.Context, filter StockPurchaseListFilter) ([]StockPurchaseResponse, int64, error) {
	if filter.Search != "" {
		found, err := s.purchaseRepo.Search(ctx, filter.Search, stockPurchaseSearchFields)
		if err != nil {
			return nil, 0, err
		}
		matched := make([]*trade.StockPurchase, 0, len(found))
		for _, sp := range found {
			if filter.Status == "" || string(sp.Status) == filter.Status {
				matched = append(matched, sp)
			}
		}
		return ToStockPurchaseResponses(shared.PageSlice(matched, filter.Page, filter.PageSize)), int64(len(matched)), nil
	}

	query := shared.DefaultQuery()
	if filter.OrderBy != "" {
		query.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		query.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		query.Where["status"] = filter.Status
	}

	purchases, err := s.purchaseRepo.FindAll(ctx, query.Paged(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.purchaseRepo.Count(ctx, query.Where)
	if err != nil {
		return nil, 0, err
	}
	return ToStockPurchaseResponses(purchases), total, nil
}

// Update applies a partial update to a pending purchase
func (s *StockPurchaseService) Update(ctx context.Context, id uuid.UUID, req UpdateStockPurchaseRequest) (*StockPurchaseResponse, error) {
	return s.mutate(ctx, id, func(sp *trade.StockPurchase) error {
		return sp.Apply(req.merge(sp.Details()))
	})
}

// Receive marks a pending purchase as received
func (s *StockPurchaseService) Receive(ctx context.Context, id uuid.UUID) (*StockPurchaseResponse, error) {
	resp, err := s.mutate(ctx, id, func(sp *trade.StockPurchase) error {
		return sp.Receive()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock purchase received",
		zap.String("purchase_id", id.String()),
		zap.String("supplier", resp.SupplierName),
		zap.Int("items", len(resp.Items)),
	)
	return resp, nil
}

// Cancel voids a pending purchase
func (s *StockPurchaseService) Cancel(ctx context.Context, id uuid.UUID) (*StockPurchaseResponse, error) {
	return s.mutate(ctx, id, func(sp *trade.StockPurchase) error {
		return sp.Cancel()
	})
}

// Delete permanently removes a purchase
func (s *StockPurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.purchaseRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NewDomainError("NOT_FOUND", "Stock purchase not found")
	}
	s.notify(ctx, id, shared.ChangeDeleted)
	return nil
}

// All returns every purchase for the ledger report
func (s *StockPurchaseService) All(ctx context.Context) ([]*trade.StockPurchase, error) {
	return s.purchaseRepo.FindAll(ctx, shared.DefaultQuery())
}

func (s *StockPurchaseService) mutate(ctx context.Context, id uuid.UUID, apply func(*trade.StockPurchase) error) (*StockPurchaseResponse, error) {
	updated, err := s.purchaseRepo.Update(ctx, id, apply)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, id, shared.ChangeUpdated)

	response := ToStockPurchaseResponse(updated)
	return &response, nil
}

func (s *StockPurchaseService) notify(ctx context.Context, id uuid.UUID, op shared.ChangeOperation) {
	publish(ctx, s.publisher, s.logger, StockPurchaseAggregate, id, op)
}
