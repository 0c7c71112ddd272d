package finance

import (
	"github.com/shopledger/backend/internal/domain/shared"
)

// TransactionRepository defines the persistence contract for manual ledger entries
type TransactionRepository interface {
	shared.Repository[Transaction]
}
