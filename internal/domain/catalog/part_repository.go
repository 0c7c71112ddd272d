package catalog

import (
	"context"

	"github.com/shopledger/backend/internal/domain/shared"
)

// PartRepository defines the persistence contract for parts
type PartRepository interface {
	shared.Repository[Part]

	// FindByPartNumber returns nil when no part carries the number
	FindByPartNumber(ctx context.Context, partNumber string) (*Part, error)

	// FindLowStock returns active parts at or below their reorder threshold
	FindLowStock(ctx context.Context) ([]*Part, error)
}
