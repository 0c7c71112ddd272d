package persistence

import (
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransactionRepository implements finance.TransactionRepository using GORM
type GormTransactionRepository struct {
	*GormRepository[finance.Transaction, *finance.Transaction, models.TransactionModel]
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB, logger *zap.Logger) *GormTransactionRepository {
	return &GormTransactionRepository{
		GormRepository: NewGormRepository[finance.Transaction, *finance.Transaction](
			db, TransactionColumns, (*models.TransactionModel).ToDomain, models.TransactionModelFromDomain, logger,
		),
	}
}
