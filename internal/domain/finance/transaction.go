package finance

import (
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a manual ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus represents the settlement state of a manual entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsValid reports whether s is a known transaction status
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction is a manual cash ledger entry (rent, salary, walk-in sale...).
// Amount is always stored as a magnitude; Type carries the direction.
type Transaction struct {
	shared.BaseAggregateRoot
	Description     string
	Amount          decimal.Decimal
	Type            TransactionType
	Category        string
	PaymentMethod   string
	RecordedBy      string
	Status          TransactionStatus
	TransactionDate string
	PaymentDate     *string
}

// TransactionDetails carries the editable fields of a transaction
type TransactionDetails struct {
	Description     string
	Amount          decimal.Decimal
	Type            TransactionType
	Category        string
	PaymentMethod   string
	RecordedBy      string
	TransactionDate string
	PaymentDate     *string
}

// NewTransaction creates a pending ledger entry
func NewTransaction(details TransactionDetails) (*Transaction, error) {
	t := &Transaction{Status: TransactionStatusPending}
	if err := t.Apply(details); err != nil {
		return nil, err
	}
	return t, nil
}

// Details returns the editable fields
func (t *Transaction) Details() TransactionDetails {
	return TransactionDetails{
		Description:     t.Description,
		Amount:          t.Amount,
		Type:            t.Type,
		Category:        t.Category,
		PaymentMethod:   t.PaymentMethod,
		RecordedBy:      t.RecordedBy,
		TransactionDate: t.TransactionDate,
		PaymentDate:     t.PaymentDate,
	}
}

// Apply validates details and replaces the editable fields
func (t *Transaction) Apply(details TransactionDetails) error {
	description := shared.SanitizeText(details.Description)
	if err := shared.RequireText("description", description); err != nil {
		return err
	}
	if !details.Type.IsValid() {
		return shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be income or expense")
	}
	if details.Amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be non-zero")
	}
	if err := shared.ValidateDate("transaction_date", details.TransactionDate); err != nil {
		return err
	}
	if err := shared.ValidateOptionalDate("payment_date", details.PaymentDate); err != nil {
		return err
	}

	t.Description = description
	t.Amount = details.Amount.Abs()
	t.Type = details.Type
	t.Category = shared.SanitizeText(details.Category)
	t.PaymentMethod = shared.SanitizeText(details.PaymentMethod)
	t.RecordedBy = shared.SanitizeText(details.RecordedBy)
	t.TransactionDate = details.TransactionDate
	t.PaymentDate = details.PaymentDate
	return nil
}

// Complete settles a pending entry on paymentDate
func (t *Transaction) Complete(paymentDate string) error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be completed")
	}
	if err := shared.ValidateDate("payment_date", paymentDate); err != nil {
		return err
	}
	t.Status = TransactionStatusCompleted
	t.PaymentDate = &paymentDate
	return nil
}

// Cancel voids the entry
func (t *Transaction) Cancel() error {
	if t.Status == TransactionStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already cancelled")
	}
	t.Status = TransactionStatusCancelled
	return nil
}

// IsIncome returns true for income entries
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}
