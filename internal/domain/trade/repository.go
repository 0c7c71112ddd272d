package trade

import (
	"context"

	"github.com/shopledger/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence contract for invoices
type InvoiceRepository interface {
	shared.Repository[Invoice]

	// FindByInvoiceNumber returns nil when the number is unused
	FindByInvoiceNumber(ctx context.Context, number string) (*Invoice, error)
}

// StockPurchaseRepository defines the persistence contract for stock purchases
type StockPurchaseRepository interface {
	shared.Repository[StockPurchase]
}
