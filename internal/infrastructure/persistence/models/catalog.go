package models

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
)

// PartModel is the persistence model for the Part domain entity.
type PartModel struct {
	AggregateModel
	Name          string     `gorm:"type:varchar(200);not null"`
	PartNumber    string     `gorm:"type:varchar(50);not null;index"`
	CategoryID    *uuid.UUID `gorm:"type:uuid"`
	PurchasePrice Numeric    `gorm:"type:numeric(18,2);not null"`
	SellingPrice  Numeric    `gorm:"type:numeric(18,2);not null"`
	MRP           Numeric    `gorm:"column:mrp;type:numeric(18,2);not null"`
	Quantity      Integer    `gorm:"not null;default:0"`
	MinStockLevel Integer    `gorm:"not null;default:0"`
	SupplierID    *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (PartModel) TableName() string {
	return "parts"
}

// ToDomain converts the persistence model to a domain Part entity.
func (m *PartModel) ToDomain() *catalog.Part {
	return &catalog.Part{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Lifecycle:         shared.Lifecycle{Status: shared.ActiveStatus(m.Status)},
		Name:              m.Name,
		PartNumber:        m.PartNumber,
		CategoryID:        m.CategoryID,
		PurchasePrice:     m.PurchasePrice.Decimal,
		SellingPrice:      m.SellingPrice.Decimal,
		MRP:               m.MRP.Decimal,
		Quantity:          int(m.Quantity),
		MinStockLevel:     int(m.MinStockLevel),
		SupplierID:        m.SupplierID,
	}
}

// FromDomain populates the persistence model from a domain Part entity.
func (m *PartModel) FromDomain(p *catalog.Part) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.PartNumber = p.PartNumber
	m.CategoryID = p.CategoryID
	m.PurchasePrice = NewNumeric(p.PurchasePrice)
	m.SellingPrice = NewNumeric(p.SellingPrice)
	m.MRP = NewNumeric(p.MRP)
	m.Quantity = Integer(p.Quantity)
	m.MinStockLevel = Integer(p.MinStockLevel)
	m.SupplierID = p.SupplierID
	m.Status = string(p.Status)
}

// PartModelFromDomain creates a new persistence model from a domain Part entity.
func PartModelFromDomain(p *catalog.Part) *PartModel {
	m := &PartModel{}
	m.FromDomain(p)
	return m
}
