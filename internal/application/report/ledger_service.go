package report

import (
	"context"
	"strings"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopledger/backend/internal/domain/report"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Cache stores computed reports. Implementations must tolerate concurrent use.
type Cache interface {
	Get(ctx context.Context, name string, dest any) (bool, error)
	Set(ctx context.Context, name string, value any) error
	Bump(ctx context.Context) (int64, error)
}

// Sources are the repositories the reports read from
type Sources struct {
	Invoices       trade.InvoiceRepository
	StockPurchases trade.StockPurchaseRepository
	Transactions   finance.TransactionRepository
	Parts          catalog.PartRepository
}

// LedgerService builds the combined ledger, cash flow and inventory reports
type LedgerService struct {
	sources Sources
	ledger  *report.Ledger
	cache   Cache
	lookups *telemetry.Counter
	logger  *zap.Logger
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithCache enables caching of computed reports
func WithCache(cache Cache) LedgerServiceOption {
	return func(s *LedgerService) {
		s.cache = cache
	}
}

// WithMetrics counts report cache lookups by report and outcome
func WithMetrics(meter metric.Meter) LedgerServiceOption {
	return func(s *LedgerService) {
		counter, err := telemetry.NewCounter(meter,
			"report_cache_lookups_total", "Report cache lookups by outcome", "{lookup}")
		if err != nil {
			s.logger.Warn("Report cache metrics unavailable", zap.Error(err))
			return
		}
		s.lookups = counter
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(sources Sources, ledger *report.Ledger, logger *zap.Logger, opts ...LedgerServiceOption) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = report.NewLedger(logger)
	}
	s := &LedgerService{
		sources: sources,
		ledger:  ledger,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger returns the filtered ledger. Stats always cover the unfiltered set.
func (s *LedgerService) Ledger(ctx context.Context, query LedgerQuery) (*LedgerResponse, error) {
	combined, err := s.combined(ctx)
	if err != nil {
		return nil, err
	}

	filtered := s.ledger.FilterTransactions(combined, report.LedgerFilter{
		Type:   query.Type,
		Status: query.Status,
	}, query.Search)

	return &LedgerResponse{
		Transactions: filtered,
		Stats:        s.ledger.CalculateStats(combined),
		Total:        len(filtered),
	}, nil
}

// CashFlow returns paid income and expenses per month
func (s *LedgerService) CashFlow(ctx context.Context) (*CashFlowResponse, error) {
	combined, err := s.combined(ctx)
	if err != nil {
		return nil, err
	}
	return &CashFlowResponse{Months: s.ledger.MonthlyBreakdown(combined)}, nil
}

// Inventory values the active stock
func (s *LedgerService) Inventory(ctx context.Context) (*report.InventoryValuation, error) {
	var valuation report.InventoryValuation
	if s.cacheGet(ctx, "inventory", &valuation) {
		return &valuation, nil
	}

	q := shared.DefaultQuery()
	q.Where["status"] = string(shared.StatusActive)
	parts, err := s.sources.Parts.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	valuation = s.ledger.ValueInventory(parts)
	s.cacheSet(ctx, "inventory", valuation)
	return &valuation, nil
}

// combined loads the three sources concurrently and merges them. The
// result depends on today's date, so the cache entry is keyed by it.
func (s *LedgerService) combined(ctx context.Context) ([]report.CombinedTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "combine")
	defer span.End()

	key := "combined:" + s.ledger.Today()

	var combined []report.CombinedTransaction
	if s.cacheGet(ctx, key, &combined) {
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true, telemetry.SpanAttrRecordCount, len(combined))
		return combined, nil
	}

	var (
		invoices     []*trade.Invoice
		purchases    []*trade.StockPurchase
		transactions []*finance.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := s.sources.Invoices.FindAll(gctx, shared.DefaultQuery())
		if err != nil {
			return err
		}
		invoices = found
		return nil
	})

	g.Go(func() error {
		found, err := s.sources.StockPurchases.FindAll(gctx, shared.DefaultQuery())
		if err != nil {
			return err
		}
		purchases = found
		return nil
	})

	g.Go(func() error {
		found, err := s.sources.Transactions.FindAll(gctx, shared.DefaultQuery())
		if err != nil {
			return err
		}
		transactions = found
		return nil
	})

	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to load ledger sources", zap.Error(err))
		return nil, err
	}

	combined = s.ledger.Combine(invoices, purchases, transactions)
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false, telemetry.SpanAttrRecordCount, len(combined))
	s.cacheSet(ctx, key, combined)
	return combined, nil
}

func (s *LedgerService) cacheGet(ctx context.Context, name string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, name, dest)
	if err != nil {
		s.logger.Warn("Report cache read failed", zap.String("name", name), zap.Error(err))
		s.countLookup(ctx, name, "error")
		return false
	}
	if hit {
		s.countLookup(ctx, name, "hit")
	} else {
		s.countLookup(ctx, name, "miss")
	}
	return hit
}

// countLookup records one cache lookup. Date suffixes are dropped from the
// report label.
func (s *LedgerService) countLookup(ctx context.Context, name, result string) {
	if s.lookups == nil {
		return
	}
	label, _, _ := strings.Cut(name, ":")
	s.lookups.Inc(ctx, telemetry.AttrReportName.String(label), telemetry.AttrCacheResult.String(result))
}

func (s *LedgerService) cacheSet(ctx context.Context, name string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, name, value); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("name", name), zap.Error(err))
	}
}
