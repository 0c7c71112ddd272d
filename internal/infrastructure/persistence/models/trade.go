package models

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceItemRow is the JSON shape of one invoice line
type InvoiceItemRow struct {
	Description        string          `json:"description"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// InvoiceModel is the persistence model for the Invoice domain entity.
// Line items live in a JSON column next to the header.
type InvoiceModel struct {
	AggregateModel
	CustomerID    *uuid.UUID                          `gorm:"type:uuid;index"`
	CustomerName  string                              `gorm:"type:varchar(200);not null"`
	CustomerPhone string                              `gorm:"type:varchar(10)"`
	InvoiceNumber string                              `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceDate   string                              `gorm:"type:varchar(10);not null;index"`
	Subtotal      Numeric                             `gorm:"type:numeric(18,2);not null"`
	Total         Numeric                             `gorm:"type:numeric(18,2);not null"`
	Status        string                              `gorm:"type:varchar(20);not null;default:'draft'"`
	PaymentMethod string                              `gorm:"type:varchar(50)"`
	PaymentDate   *string                             `gorm:"type:varchar(10)"`
	Notes         string                              `gorm:"type:text"`
	Items         datatypes.JSONSlice[InvoiceItemRow] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	items := make([]trade.InvoiceItem, len(m.Items))
	for i, row := range m.Items {
		items[i] = trade.InvoiceItem{
			Description:        row.Description,
			Quantity:           row.Quantity,
			UnitPrice:          row.UnitPrice,
			DiscountPercentage: row.DiscountPercentage,
			LineTotal:          row.LineTotal,
		}
	}
	return &trade.Invoice{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceDate:       m.InvoiceDate,
		Subtotal:          m.Subtotal.Decimal,
		Total:             m.Total.Decimal,
		Status:            trade.InvoiceStatus(m.Status),
		PaymentMethod:     m.PaymentMethod,
		PaymentDate:       m.PaymentDate,
		Notes:             m.Notes,
		Items:             items,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *trade.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.CustomerPhone = inv.CustomerPhone
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceDate = inv.InvoiceDate
	m.Subtotal = NewNumeric(inv.Subtotal)
	m.Total = NewNumeric(inv.Total)
	m.Status = string(inv.Status)
	m.PaymentMethod = inv.PaymentMethod
	m.PaymentDate = inv.PaymentDate
	m.Notes = inv.Notes
	m.Items = make(datatypes.JSONSlice[InvoiceItemRow], len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemRow{
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			LineTotal:          item.LineTotal,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// StockPurchaseItemRow is the JSON shape of one purchased item
type StockPurchaseItemRow struct {
	Name          string          `json:"name"`
	PartNumber    string          `json:"part_number"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal `json:"mrp"`
}

// StockPurchaseModel is the persistence model for the StockPurchase domain entity.
type StockPurchaseModel struct {
	AggregateModel
	SupplierID   *uuid.UUID                                `gorm:"type:uuid;index"`
	SupplierName string                                    `gorm:"type:varchar(200);not null"`
	PurchaseDate string                                    `gorm:"type:varchar(10);not null;index"`
	Total        Numeric                                   `gorm:"type:numeric(18,2);not null"`
	Status       string                                    `gorm:"type:varchar(20);not null;default:'pending'"`
	Notes        string                                    `gorm:"type:text"`
	Items        datatypes.JSONSlice[StockPurchaseItemRow] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockPurchaseModel) TableName() string {
	return "stock_purchases"
}

// ToDomain converts the persistence model to a domain StockPurchase entity.
func (m *StockPurchaseModel) ToDomain() *trade.StockPurchase {
	items := make([]trade.StockPurchaseItem, len(m.Items))
	for i, row := range m.Items {
		items[i] = trade.StockPurchaseItem{
			Name:          row.Name,
			PartNumber:    row.PartNumber,
			Quantity:      row.Quantity,
			PurchasePrice: row.PurchasePrice,
			MRP:           row.MRP,
		}
	}
	return &trade.StockPurchase{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		PurchaseDate:      m.PurchaseDate,
		Total:             m.Total.Decimal,
		Status:            trade.StockPurchaseStatus(m.Status),
		Notes:             m.Notes,
		Items:             items,
	}
}

// FromDomain populates the persistence model from a domain StockPurchase entity.
func (m *StockPurchaseModel) FromDomain(sp *trade.StockPurchase) {
	m.FromDomainAggregateRoot(sp.BaseAggregateRoot)
	m.SupplierID = sp.SupplierID
	m.SupplierName = sp.SupplierName
	m.PurchaseDate = sp.PurchaseDate
	m.Total = NewNumeric(sp.Total)
	m.Status = string(sp.Status)
	m.Notes = sp.Notes
	m.Items = make(datatypes.JSONSlice[StockPurchaseItemRow], len(sp.Items))
	for i, item := range sp.Items {
		m.Items[i] = StockPurchaseItemRow{
			Name:          item.Name,
			PartNumber:    item.PartNumber,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
			MRP:           item.MRP,
		}
	}
}

// StockPurchaseModelFromDomain creates a new persistence model from a domain StockPurchase entity.
func StockPurchaseModelFromDomain(sp *trade.StockPurchase) *StockPurchaseModel {
	m := &StockPurchaseModel{}
	m.FromDomain(sp)
	return m
}
