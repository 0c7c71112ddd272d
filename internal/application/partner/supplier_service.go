package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var supplierSearchFields = []string{"name", "contact_person", "phone", "email"}

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.details())
	if err != nil {
		return nil, err
	}

	if err := s.ensurePhoneFree(ctx, supplier.Phone, uuid.Nil); err != nil {
		return nil, err
	}

	created, err := s.supplierRepo.Create(ctx, supplier)
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(created)
	return &response, nil
}

// CreateBatch validates every request first, then stores all suppliers in one transaction
func (s *SupplierService) CreateBatch(ctx context.Context, reqs []CreateSupplierRequest) ([]SupplierResponse, error) {
	suppliers := make([]*partner.Supplier, 0, len(reqs))
	for _, req := range reqs {
		supplier, err := partner.NewSupplier(req.details())
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}

	created, err := s.supplierRepo.CreateBatch(ctx, suppliers)
	if err != nil {
		return nil, err
	}
	return ToSupplierResponses(created), nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	if filter.Search != "" {
		found, err := s.supplierRepo.Search(ctx, filter.Search, supplierSearchFields)
		if err != nil {
			return nil, 0, err
		}
		matched := make([]*partner.Supplier, 0, len(found))
		for _, supplier := range found {
			if filter.Status == "" || string(supplier.Status) == filter.Status {
				matched = append(matched, supplier)
			}
		}
		return ToSupplierResponses(shared.PageSlice(matched, filter.Page, filter.PageSize)), int64(len(matched)), nil
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

	suppliers, err := s.supplierRepo.FindAll(ctx, query.Paged(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, query.Where)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Update applies a partial update
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	if req.Phone != nil {
		phone, err := shared.NormalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		if err := s.ensurePhoneFree(ctx, phone, supplierID); err != nil {
			return nil, err
		}
	}

	updated, err := s.supplierRepo.Update(ctx, supplierID, func(supplier *partner.Supplier) error {
		return supplier.Apply(req.merge(supplier.Details()))
	})
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(updated)
	return &response, nil
}

// Delete permanently removes a supplier
func (s *SupplierService) Delete(ctx context.Context, supplierID uuid.UUID) error {
	deleted, err := s.supplierRepo.Delete(ctx, supplierID)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return nil
}

// Deactivate soft-deletes a supplier
func (s *SupplierService) Deactivate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	ok, err := s.supplierRepo.SoftDelete(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return s.GetByID(ctx, supplierID)
}

// Restore reactivates a soft-deleted supplier
func (s *SupplierService) Restore(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	ok, err := s.supplierRepo.Restore(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	return s.GetByID(ctx, supplierID)
}

// ensurePhoneFree rejects a phone already used by a supplier other than self
func (s *SupplierService) ensurePhoneFree(ctx context.Context, phone string, self uuid.UUID) error {
	if phone == "" {
		return nil
	}
	existing, err := s.supplierRepo.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "Supplier with this phone already exists")
	}
	return nil
}
