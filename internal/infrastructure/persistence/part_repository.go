package persistence

import (
	"context"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartRepository implements catalog.PartRepository using GORM
type GormPartRepository struct {
	*GormRepository[catalog.Part, *catalog.Part, models.PartModel]
}

// NewGormPartRepository creates a new GormPartRepository
func NewGormPartRepository(db *gorm.DB, logger *zap.Logger) *GormPartRepository {
	return &GormPartRepository{
		GormRepository: NewGormRepository[catalog.Part, *catalog.Part](
			db, PartColumns, (*models.PartModel).ToDomain, models.PartModelFromDomain, logger,
		),
	}
}

// FindByPartNumber returns the newest part carrying partNumber, or nil
func (r *GormPartRepository) FindByPartNumber(ctx context.Context, partNumber string) (*catalog.Part, error) {
	return r.FindFirst(ctx, map[string]any{"part_number": partNumber})
}

// FindLowStock returns active parts whose quantity is at or below their
// reorder threshold, scarcest first
func (r *GormPartRepository) FindLowStock(ctx context.Context) ([]*catalog.Part, error) {
	var rows []models.PartModel
	err := r.query(ctx).
		Where("status = ? AND quantity <= min_stock_level", string(shared.StatusActive)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "quantity"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}}).
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("find low stock", err)
	}
	return r.mapRows(rows), nil
}
