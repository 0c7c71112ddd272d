package models

import (
	"github.com/shopledger/backend/internal/domain/finance"
)

// TransactionModel is the persistence model for manual ledger entries.
type TransactionModel struct {
	AggregateModel
	Description     string  `gorm:"type:varchar(500);not null"`
	Amount          Numeric `gorm:"type:numeric(18,2);not null"`
	TransactionType string  `gorm:"type:varchar(20);not null"`
	Category        string  `gorm:"type:varchar(100)"`
	PaymentMethod   string  `gorm:"type:varchar(50)"`
	RecordedBy      string  `gorm:"type:varchar(100)"`
	Status          string  `gorm:"type:varchar(20);not null;default:'pending'"`
	TransactionDate string  `gorm:"type:varchar(10);not null;index"`
	PaymentDate     *string `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
// Amounts are stored unsigned; a negative legacy value is normalized.
func (m *TransactionModel) ToDomain() *finance.Transaction {
	return &finance.Transaction{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Description:       m.Description,
		Amount:            m.Amount.Decimal.Abs(),
		Type:              finance.TransactionType(m.TransactionType),
		Category:          m.Category,
		PaymentMethod:     m.PaymentMethod,
		RecordedBy:        m.RecordedBy,
		Status:            finance.TransactionStatus(m.Status),
		TransactionDate:   m.TransactionDate,
		PaymentDate:       m.PaymentDate,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *finance.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Description = t.Description
	m.Amount = NewNumeric(t.Amount.Abs())
	m.TransactionType = string(t.Type)
	m.Category = t.Category
	m.PaymentMethod = t.PaymentMethod
	m.RecordedBy = t.RecordedBy
	m.Status = string(t.Status)
	m.TransactionDate = t.TransactionDate
	m.PaymentDate = t.PaymentDate
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
