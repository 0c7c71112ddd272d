package partner

import (
	"context"

	"github.com/shopledger/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	shared.Repository[Supplier]

	// FindByPhone returns nil when no supplier has the normalized phone
	FindByPhone(ctx context.Context, phone string) (*Supplier, error)
}
