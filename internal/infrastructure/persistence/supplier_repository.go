package persistence

import (
	"context"

	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	*GormRepository[partner.Supplier, *partner.Supplier, models.SupplierModel]
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB, logger *zap.Logger) *GormSupplierRepository {
	return &GormSupplierRepository{
		GormRepository: NewGormRepository[partner.Supplier, *partner.Supplier](
			db, SupplierColumns, (*models.SupplierModel).ToDomain, models.SupplierModelFromDomain, logger,
		),
	}
}

// FindByPhone finds a supplier by phone number. The phone is normalized
// before the lookup so formatted input matches stored digits.
func (r *GormSupplierRepository) FindByPhone(ctx context.Context, phone string) (*partner.Supplier, error) {
	normalized, err := shared.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	return r.FindFirst(ctx, map[string]any{"phone": normalized})
}
