package report

import (
	"context"

	"github.com/shopledger/backend/internal/application/catalog"
	"github.com/shopledger/backend/internal/application/finance"
	"github.com/shopledger/backend/internal/application/trade"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidator bumps the report cache generation whenever a record
// feeding a report changes
type CacheInvalidator struct {
	cache  Cache
	logger *zap.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator
func NewCacheInvalidator(cache Cache, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the change events of every report source
func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		shared.ChangedEventType(trade.InvoiceAggregate),
		shared.ChangedEventType(trade.StockPurchaseAggregate),
		shared.ChangedEventType(finance.TransactionAggregate),
		shared.ChangedEventType(catalog.PartAggregate),
	}
}

// Handle bumps the cache version
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	version, err := h.cache.Bump(ctx)
	if err != nil {
		return err
	}
	h.logger.Debug("Reports invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Int64("version", version),
	)
	return nil
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)
