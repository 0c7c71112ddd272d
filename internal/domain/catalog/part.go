package catalog

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Part is a stocked spare part. It is the aggregate root of the catalog.
type Part struct {
	shared.BaseAggregateRoot
	shared.Lifecycle
	Name          string
	PartNumber    string
	CategoryID    *uuid.UUID
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	MRP           decimal.Decimal
	Quantity      int
	MinStockLevel int
	SupplierID    *uuid.UUID
}

// PartDetails carries the editable fields of a part
type PartDetails struct {
	Name          string
	PartNumber    string
	CategoryID    *uuid.UUID
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	MRP           decimal.Decimal
	Quantity      int
	MinStockLevel int
	SupplierID    *uuid.UUID
}

// NewPart creates an active part. Identity is assigned when it is persisted.
func NewPart(details PartDetails) (*Part, error) {
	p := &Part{Lifecycle: shared.Lifecycle{Status: shared.StatusActive}}
	if err := p.Apply(details); err != nil {
		return nil, err
	}
	return p, nil
}

// Details returns the editable fields
func (p *Part) Details() PartDetails {
	return PartDetails{
		Name:          p.Name,
		PartNumber:    p.PartNumber,
		CategoryID:    p.CategoryID,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		MRP:           p.MRP,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		SupplierID:    p.SupplierID,
	}
}

// Apply replaces the editable fields after validating them
func (p *Part) Apply(details PartDetails) error {
	details.Name = shared.SanitizeText(details.Name)
	details.PartNumber = shared.SanitizeText(details.PartNumber)

	if err := validatePartDetails(details); err != nil {
		return err
	}

	p.Name = details.Name
	p.PartNumber = details.PartNumber
	p.CategoryID = details.CategoryID
	p.PurchasePrice = details.PurchasePrice
	p.SellingPrice = details.SellingPrice
	p.MRP = details.MRP
	p.Quantity = details.Quantity
	p.MinStockLevel = details.MinStockLevel
	p.SupplierID = details.SupplierID
	return nil
}

// AdjustStock adds delta (negative for issues) to the quantity on hand
func (p *Part) AdjustStock(delta int) error {
	if p.Quantity+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.Quantity += delta
	return nil
}

// IsLowStock returns true when the quantity has reached the reorder threshold
func (p *Part) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

// Margin returns selling price minus purchase price
func (p *Part) Margin() decimal.Decimal {
	return p.SellingPrice.Sub(p.PurchasePrice)
}

func validatePartDetails(d PartDetails) error {
	if err := shared.RequireText("name", d.Name); err != nil {
		return err
	}
	if err := shared.RequireMaxLength("name", d.Name, 200); err != nil {
		return err
	}
	if err := shared.RequireText("part_number", d.PartNumber); err != nil {
		return err
	}
	if err := shared.RequireMaxLength("part_number", d.PartNumber, 50); err != nil {
		return err
	}
	if d.PurchasePrice.IsNegative() || d.SellingPrice.IsNegative() || d.MRP.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if d.MRP.IsPositive() && d.SellingPrice.GreaterThan(d.MRP) {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot exceed MRP")
	}
	if d.Quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if d.MinStockLevel < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK_LEVEL", "Minimum stock level cannot be negative")
	}
	return nil
}
