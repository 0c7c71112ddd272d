package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest represents a request to record a manual ledger entry.
// An empty TransactionDate means today.
type CreateTransactionRequest struct {
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"transaction_type" binding:"required,oneof=income expense"`
	Category        string          `json:"category" binding:"max=100"`
	PaymentMethod   string          `json:"payment_method" binding:"max=50"`
	RecordedBy      string          `json:"recorded_by" binding:"max=100"`
	TransactionDate string          `json:"transaction_date"`
	PaymentDate     *string         `json:"payment_date"`
}

// UpdateTransactionRequest represents a partial update. Nil fields keep their value.
type UpdateTransactionRequest struct {
	Description     *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Amount          *decimal.Decimal `json:"amount"`
	Type            *string          `json:"transaction_type" binding:"omitempty,oneof=income expense"`
	Category        *string          `json:"category" binding:"omitempty,max=100"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,max=50"`
	RecordedBy      *string          `json:"recorded_by" binding:"omitempty,max=100"`
	TransactionDate *string          `json:"transaction_date"`
	PaymentDate     *string          `json:"payment_date"`
}

// CompleteTransactionRequest settles a pending entry. An empty date means today.
type CompleteTransactionRequest struct {
	PaymentDate string `json:"payment_date"`
}

// TransactionListFilter represents filter options for the transaction list
type TransactionListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"transaction_type" binding:"omitempty,oneof=income expense"`
	Status   string `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// TransactionResponse represents a manual ledger entry in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"transaction_type"`
	Category        string          `json:"category"`
	PaymentMethod   string          `json:"payment_method"`
	RecordedBy      string          `json:"recorded_by"`
	Status          string          `json:"status"`
	TransactionDate string          `json:"transaction_date"`
	PaymentDate     *string         `json:"payment_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToTransactionResponse converts a domain Transaction to TransactionResponse
func ToTransactionResponse(t *finance.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Description:     t.Description,
		Amount:          t.Amount,
		Type:            string(t.Type),
		Category:        t.Category,
		PaymentMethod:   t.PaymentMethod,
		RecordedBy:      t.RecordedBy,
		Status:          string(t.Status),
		TransactionDate: t.TransactionDate,
		PaymentDate:     t.PaymentDate,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.Version,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []*finance.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		responses[i] = ToTransactionResponse(t)
	}
	return responses
}

func (r CreateTransactionRequest) details(today string) finance.TransactionDetails {
	date := r.TransactionDate
	if date == "" {
		date = today
	}
	return finance.TransactionDetails{
		Description:     r.Description,
		Amount:          r.Amount,
		Type:            finance.TransactionType(r.Type),
		Category:        r.Category,
		PaymentMethod:   r.PaymentMethod,
		RecordedBy:      r.RecordedBy,
		TransactionDate: date,
		PaymentDate:     r.PaymentDate,
	}
}

func (r UpdateTransactionRequest) merge(d finance.TransactionDetails) finance.TransactionDetails {
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Amount != nil {
		d.Amount = *r.Amount
	}
	if r.Type != nil {
		d.Type = finance.TransactionType(*r.Type)
	}
	if r.Category != nil {
		d.Category = *r.Category
	}
	if r.PaymentMethod != nil {
		d.PaymentMethod = *r.PaymentMethod
	}
	if r.RecordedBy != nil {
		d.RecordedBy = *r.RecordedBy
	}
	if r.TransactionDate != nil {
		d.TransactionDate = *r.TransactionDate
	}
	if r.PaymentDate != nil {
		d.PaymentDate = r.PaymentDate
	}
	return d
}
