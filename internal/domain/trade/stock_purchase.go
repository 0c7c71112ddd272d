package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockPurchaseStatus represents the status of a stock purchase
type StockPurchaseStatus string

const (
	StockPurchaseStatusPending   StockPurchaseStatus = "pending"
	StockPurchaseStatusReceived  StockPurchaseStatus = "received"
	StockPurchaseStatusCancelled StockPurchaseStatus = "cancelled"
)

// IsValid reports whether s is a known stock purchase status
func (s StockPurchaseStatus) IsValid() bool {
	switch s {
	case StockPurchaseStatusPending, StockPurchaseStatusReceived, StockPurchaseStatusCancelled:
		return true
	}
	return false
}

// StockPurchaseItem is one purchased line
type StockPurchaseItem struct {
	Name          string
	PartNumber    string
	Quantity      int
	PurchasePrice decimal.Decimal
	MRP           decimal.Decimal
}

// Amount returns quantity * purchase price
func (i StockPurchaseItem) Amount() decimal.Decimal {
	return i.PurchasePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StockPurchase records stock bought from a supplier
type StockPurchase struct {
	shared.BaseAggregateRoot
	SupplierID   *uuid.UUID
	SupplierName string
	PurchaseDate string
	Total        decimal.Decimal
	Status       StockPurchaseStatus
	Notes        string
	Items        []StockPurchaseItem
}

// StockPurchaseDetails carries the editable fields of a stock purchase
type StockPurchaseDetails struct {
	SupplierID   *uuid.UUID
	SupplierName string
	PurchaseDate string
	Notes        string
	Items        []StockPurchaseItem
}

// NewStockPurchase creates a pending purchase
func NewStockPurchase(details StockPurchaseDetails) (*StockPurchase, error) {
	sp := &StockPurchase{Status: StockPurchaseStatusPending}
	if err := sp.Apply(details); err != nil {
		return nil, err
	}
	return sp, nil
}

// Details returns the editable fields
func (sp *StockPurchase) Details() StockPurchaseDetails {
	items := make([]StockPurchaseItem, len(sp.Items))
	copy(items, sp.Items)
	return StockPurchaseDetails{
		SupplierID:   sp.SupplierID,
		SupplierName: sp.SupplierName,
		PurchaseDate: sp.PurchaseDate,
		Notes:        sp.Notes,
		Items:        items,
	}
}

// Apply validates details and replaces the editable fields of a pending purchase
func (sp *StockPurchase) Apply(details StockPurchaseDetails) error {
	if sp.Status != StockPurchaseStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit stock purchase in %s status", sp.Status))
	}
	supplier := shared.SanitizeText(details.SupplierName)
	if err := shared.RequireText("supplier_name", supplier); err != nil {
		return err
	}
	if err := shared.ValidateDate("purchase_date", details.PurchaseDate); err != nil {
		return err
	}
	items, err := normalizePurchaseItems(details.Items)
	if err != nil {
		return err
	}

	sp.SupplierID = details.SupplierID
	sp.SupplierName = supplier
	sp.PurchaseDate = details.PurchaseDate
	sp.Notes = details.Notes
	sp.Items = items
	sp.Recalculate()
	return nil
}

// Recalculate derives the purchase total from the items
func (sp *StockPurchase) Recalculate() {
	total := decimal.Zero
	for _, item := range sp.Items {
		total = total.Add(item.Amount())
	}
	sp.Total = total
}

// Receive marks the goods as received
func (sp *StockPurchase) Receive() error {
	if sp.Status != StockPurchaseStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending stock purchases can be received")
	}
	sp.Status = StockPurchaseStatusReceived
	return nil
}

// Cancel voids a pending purchase
func (sp *StockPurchase) Cancel() error {
	if sp.Status != StockPurchaseStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending stock purchases can be cancelled")
	}
	sp.Status = StockPurchaseStatusCancelled
	return nil
}

func normalizePurchaseItems(items []StockPurchaseItem) ([]StockPurchaseItem, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Stock purchase must have at least one item")
	}
	out := make([]StockPurchaseItem, len(items))
	for i, item := range items {
		item.Name = shared.SanitizeText(item.Name)
		item.PartNumber = shared.SanitizeText(item.PartNumber)
		if item.Name == "" {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d: name is required", i+1))
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		if item.PurchasePrice.IsNegative() || item.MRP.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d: prices cannot be negative", i+1))
		}
		out[i] = item
	}
	return out, nil
}
