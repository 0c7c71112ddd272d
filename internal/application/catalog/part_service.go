package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PartAggregate is the aggregate type carried by part change events
const PartAggregate = "Part"

var partSearchFields = []string{"name", "part_number"}

// PartService handles part-related business operations
type PartService struct {
	partRepo  catalog.PartRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPartService creates a new PartService. publisher may be nil.
func NewPartService(partRepo catalog.PartRepository, publisher shared.EventPublisher, logger *zap.Logger) *PartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartService{
		partRepo:  partRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and stores a new part
func (s *PartService) Create(ctx context.Context, req CreatePartRequest) (*PartResponse, error) {
	part, err := catalog.NewPart(req.details())
	if err != nil {
		return nil, err
	}

	existing, err := s.partRepo.FindByPartNumber(ctx, part.PartNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Part with this part number already exists")
	}

	created, err := s.partRepo.Create(ctx, part)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created.ID, shared.ChangeCreated)

	response := ToPartResponse(created)
	return &response, nil
}

// CreateBatch validates every request first, then stores all parts in one transaction
func (s *PartService) CreateBatch(ctx context.Context, reqs []CreatePartRequest) ([]PartResponse, error) {
	parts := make([]*catalog.Part, 0, len(reqs))
	for _, req := range reqs {
		part, err := catalog.NewPart(req.details())
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	created, err := s.partRepo.CreateBatch(ctx, parts)
	if err != nil {
		return nil, err
	}
	for _, p := range created {
		s.notify(ctx, p.ID, shared.ChangeCreated)
	}
	return ToPartResponses(created), nil
}

// GetByID retrieves a part by ID
func (s *PartService) GetByID(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	part, err := s.find(ctx, partID)
	if err != nil {
		return nil, err
	}

	response := ToPartResponse(part)
	return &response, nil
}

// List retrieves parts with filtering and pagination. A search term switches
// to a name/part-number match across all parts before paging.
func (s *PartService) List(ctx context.Context, filter PartListFilter) ([]PartResponse, int64, error) {
	if filter.Search != "" {
		found, err := s.partRepo.Search(ctx, filter.Search, partSearchFields)
		if err != nil {
			return nil, 0, err
		}
		matched := make([]*catalog.Part, 0, len(found))
		for _, p := range found {
			if filter.Status == "" || string(p.Status) == filter.Status {
				matched = append(matched, p)
			}
		}
		page := shared.PageSlice(matched, filter.Page, filter.PageSize)
		return ToPartResponses(page), int64(len(matched)), nil
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

	parts, err := s.partRepo.FindAll(ctx, query.Paged(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.partRepo.Count(ctx, query.Where)
	if err != nil {
		return nil, 0, err
	}
	return ToPartResponses(parts), total, nil
}

// LowStock returns active parts at or below their minimum stock level
func (s *PartService) LowStock(ctx context.Context) ([]PartResponse, error) {
	parts, err := s.partRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToPartResponses(parts), nil
}

// Update applies a partial update
func (s *PartService) Update(ctx context.Context, partID uuid.UUID, req UpdatePartRequest) (*PartResponse, error) {
	if req.PartNumber != nil {
		existing, err := s.partRepo.FindByPartNumber(ctx, shared.SanitizeText(*req.PartNumber))
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != partID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Part with this part number already exists")
		}
	}

	updated, err := s.partRepo.Update(ctx, partID, func(p *catalog.Part) error {
		return p.Apply(req.merge(p.Details()))
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, partID, shared.ChangeUpdated)

	response := ToPartResponse(updated)
	return &response, nil
}

// AdjustStock adds delta units to the quantity on hand
func (s *PartService) AdjustStock(ctx context.Context, partID uuid.UUID, delta int) (*PartResponse, error) {
	updated, err := s.partRepo.Update(ctx, partID, func(p *catalog.Part) error {
		return p.AdjustStock(delta)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, partID, shared.ChangeUpdated)

	if updated.IsLowStock() {
		s.logger.Info("Part at or below minimum stock level",
			zap.String("part_id", partID.String()),
			zap.String("part_number", updated.PartNumber),
			zap.Int("quantity", updated.Quantity),
		)
	}

	response := ToPartResponse(updated)
	return &response, nil
}

// Delete permanently removes a part
func (s *PartService) Delete(ctx context.Context, partID uuid.UUID) error {
	deleted, err := s.partRepo.Delete(ctx, partID)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NewDomainError("NOT_FOUND", "Part not found")
	}
	s.notify(ctx, partID, shared.ChangeDeleted)
	return nil
}

// Deactivate soft-deletes a part
func (s *PartService) Deactivate(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	return s.setActive(ctx, partID, s.partRepo.SoftDelete)
}

// Restore reactivates a soft-deleted part
func (s *PartService) Restore(ctx context.Context, partID uuid.UUID) (*PartResponse, error) {
	return s.setActive(ctx, partID, s.partRepo.Restore)
}

func (s *PartService) setActive(ctx context.Context, partID uuid.UUID, transition func(context.Context, uuid.UUID) (bool, error)) (*PartResponse, error) {
	ok, err := transition(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Part not found")
	}
	s.notify(ctx, partID, shared.ChangeUpdated)
	return s.GetByID(ctx, partID)
}

func (s *PartService) find(ctx context.Context, partID uuid.UUID) (*catalog.Part, error) {
	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Part not found")
	}
	return part, nil
}

func (s *PartService) notify(ctx context.Context, partID uuid.UUID, op shared.ChangeOperation) {
	if s.publisher == nil {
		return
	}
	event := shared.NewRecordChangedEvent(PartAggregate, partID, op)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish part change", zap.String("part_id", partID.String()), zap.Error(err))
	}
}
