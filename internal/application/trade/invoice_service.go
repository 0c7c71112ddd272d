package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// Aggregate types carried by change events
const (
	InvoiceAggregate       = "Invoice"
	StockPurchaseAggregate = "StockPurchase"
)

var invoiceSearchFields = []string{"invoice_number", "customer_name", "customer_phone", "notes"}

// Option configures the trade services
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used for default dates
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) today() string {
	return o.now().UTC().Format(shared.DateLayout)
}

// InvoiceService handles sales invoices
type InvoiceService struct {
	invoiceRepo trade.InvoiceRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
	opts        options
}

// NewInvoiceService creates a new InvoiceService. publisher may be nil.
func NewInvoiceService(
	invoiceRepo trade.InvoiceRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		publisher:   publisher,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

// Create issues a draft invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := trade.NewInvoice(req.details(s.opts.today()))
	if err != nil {
		return nil, err
	}

	if err := s.ensureNumberFree(ctx, inv.InvoiceNumber, uuid.Nil); err != nil {
		return nil, err
	}

	created, err := s.invoiceRepo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created.ID, shared.ChangeCreated)

	s.logger.Info("Invoice created",
		zap.String("invoice_id", created.ID.String()),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("total", created.Total.StringFixed(2)),
	)

	response := ToInvoiceResponse(created)
	return &response, nil
}

// CreateBatch validates every request first, then stores all invoices in one transaction
func (s *InvoiceService) CreateBatch(ctx context.Context, reqs []CreateInvoiceRequest) ([]InvoiceResponse, error) {
	today := s.opts.today()
	seen := make(map[string]struct{}, len(reqs))
	invoices := make([]*trade.Invoice, 0, len(reqs))
	for _, req := range reqs {
		inv, err := trade.NewInvoice(req.details(today))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[inv.InvoiceNumber]; dup {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Duplicate invoice number in batch: "+inv.InvoiceNumber)
		}
		seen[inv.InvoiceNumber] = struct{}{}
		invoices = append(invoices, inv)
	}

	created, err := s.invoiceRepo.CreateBatch(ctx, invoices)
	if err != nil {
		return nil, err
	}
	for _, inv := range created {
		s.notify(ctx, inv.ID, shared.ChangeCreated)
	}
	return ToInvoiceResponses(created), nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Search != "" {
		found, err := s.invoiceRepo.Search(ctx, filter.Search, invoiceSearchFields)
		if err != nil {
			return nil, 0, err
		}
		matched := make([]*trade.Invoice, 0, len(found))
		for _, inv := range found {
			if filter.Status == "" || string(inv.Status) == filter.Status {
				matched = append(matched, inv)
			}
		}
		return ToInvoiceResponses(shared.PageSlice(matched, filter.Page, filter.PageSize)), int64(len(matched)), nil
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

	invoices, err := s.invoiceRepo.FindAll(ctx, query.Paged(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, query.Where)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Update applies a partial update and recalculates totals
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if req.InvoiceNumber != nil {
		if err := s.ensureNumberFree(ctx, shared.SanitizeText(*req.InvoiceNumber), id); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, func(inv *trade.Invoice) error {
		return inv.Apply(req.merge(inv.Details()))
	})
}

// Send marks a draft invoice as sent
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *trade.Invoice) error {
		return inv.Send()
	})
}

// MarkPaid settles an invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, req PayInvoiceRequest) (*InvoiceResponse, error) {
	date := req.PaymentDate
	if date == "" {
		date = s.opts.today()
	}
	return s.mutate(ctx, id, func(inv *trade.Invoice) error {
		return inv.MarkPaid(req.PaymentMethod, date)
	})
}

// Cancel voids an unpaid invoice
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *trade.Invoice) error {
		return inv.Cancel()
	})
}

// Delete permanently removes an invoice
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.invoiceRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	s.notify(ctx, id, shared.ChangeDeleted)
	return nil
}

// All returns every invoice for the ledger report
func (s *InvoiceService) All(ctx context.Context) ([]*trade.Invoice, error) {
	return s.invoiceRepo.FindAll(ctx, shared.DefaultQuery())
}

func (s *InvoiceService) mutate(ctx context.Context, id uuid.UUID, apply func(*trade.Invoice) error) (*InvoiceResponse, error) {
	updated, err := s.invoiceRepo.Update(ctx, id, apply)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, id, shared.ChangeUpdated)

	response := ToInvoiceResponse(updated)
	return &response, nil
}

// ensureNumberFree rejects an invoice number already used by another invoice
func (s *InvoiceService) ensureNumberFree(ctx context.Context, number string, self uuid.UUID) error {
	if number == "" {
		return nil
	}
	existing, err := s.invoiceRepo.FindByInvoiceNumber(ctx, number)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "Invoice number already exists")
	}
	return nil
}

func (s *InvoiceService) notify(ctx context.Context, id uuid.UUID, op shared.ChangeOperation) {
	publish(ctx, s.publisher, s.logger, InvoiceAggregate, id, op)
}

func publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggType string, id uuid.UUID, op shared.ChangeOperation) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, shared.NewRecordChangedEvent(aggType, id, op)); err != nil {
		logger.Warn("Failed to publish change",
			zap.String("aggregate_type", aggType),
			zap.String("aggregate_id", id.String()),
			zap.Error(err),
		)
	}
}
