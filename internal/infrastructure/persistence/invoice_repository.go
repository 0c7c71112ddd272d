package persistence

import (
	"context"

	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements trade.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	*GormRepository[trade.Invoice, *trade.Invoice, models.InvoiceModel]
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, logger *zap.Logger) *GormInvoiceRepository {
	return &GormInvoiceRepository{
		GormRepository: NewGormRepository[trade.Invoice, *trade.Invoice](
			db, InvoiceColumns, (*models.InvoiceModel).ToDomain, models.InvoiceModelFromDomain, logger,
		),
	}
}

// FindByInvoiceNumber returns the invoice with number, or nil
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, number string) (*trade.Invoice, error) {
	return r.FindFirst(ctx, map[string]any{"invoice_number": number})
}

// GormStockPurchaseRepository implements trade.StockPurchaseRepository using GORM
type GormStockPurchaseRepository struct {
	*GormRepository[trade.StockPurchase, *trade.StockPurchase, models.StockPurchaseModel]
}

// NewGormStockPurchaseRepository creates a new GormStockPurchaseRepository
func NewGormStockPurchaseRepository(db *gorm.DB, logger *zap.Logger) *GormStockPurchaseRepository {
	return &GormStockPurchaseRepository{
		GormRepository: NewGormRepository[trade.StockPurchase, *trade.StockPurchase](
			db, StockPurchaseColumns, (*models.StockPurchaseModel).ToDomain, models.StockPurchaseModelFromDomain, logger,
		),
	}
}
