package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreatePartRequest represents a request to create a new part
type CreatePartRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	PartNumber    string          `json:"part_number" binding:"required,min=1,max=50"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MRP           decimal.Decimal `json:"mrp"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	MinStockLevel int             `json:"min_stock_level" binding:"min=0"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
}

// UpdatePartRequest represents a partial update. Nil fields keep their value.
type UpdatePartRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	PartNumber    *string          `json:"part_number" binding:"omitempty,min=1,max=50"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MRP           *decimal.Decimal `json:"mrp"`
	Quantity      *int             `json:"quantity" binding:"omitempty,min=0"`
	MinStockLevel *int             `json:"min_stock_level" binding:"omitempty,min=0"`
	SupplierID    *uuid.UUID       `json:"supplier_id"`
}

// AdjustStockRequest adds Delta units (negative to issue stock)
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// PartListFilter represents filter options for the part list
type PartListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// PartResponse represents a part in API responses
type PartResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	PartNumber    string          `json:"part_number"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MRP           decimal.Decimal `json:"mrp"`
	Margin        decimal.Decimal `json:"margin"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToPartResponse converts a domain Part to PartResponse
func ToPartResponse(p *catalog.Part) PartResponse {
	return PartResponse{
		ID:            p.ID,
		Name:          p.Name,
		PartNumber:    p.PartNumber,
		CategoryID:    p.CategoryID,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		MRP:           p.MRP,
		Margin:        p.Margin(),
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
		SupplierID:    p.SupplierID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToPartResponses converts a slice of parts
func ToPartResponses(parts []*catalog.Part) []PartResponse {
	responses := make([]PartResponse, len(parts))
	for i, p := range parts {
		responses[i] = ToPartResponse(p)
	}
	return responses
}

func (r CreatePartRequest) details() catalog.PartDetails {
	return catalog.PartDetails{
		Name:          r.Name,
		PartNumber:    r.PartNumber,
		CategoryID:    r.CategoryID,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		MRP:           r.MRP,
		Quantity:      r.Quantity,
		MinStockLevel: r.MinStockLevel,
		SupplierID:    r.SupplierID,
	}
}

// merge overlays the set fields of r onto d
func (r UpdatePartRequest) merge(d catalog.PartDetails) catalog.PartDetails {
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.PartNumber != nil {
		d.PartNumber = *r.PartNumber
	}
	if r.CategoryID != nil {
		d.CategoryID = r.CategoryID
	}
	if r.PurchasePrice != nil {
		d.PurchasePrice = *r.PurchasePrice
	}
	if r.SellingPrice != nil {
		d.SellingPrice = *r.SellingPrice
	}
	if r.MRP != nil {
		d.MRP = *r.MRP
	}
	if r.Quantity != nil {
		d.Quantity = *r.Quantity
	}
	if r.MinStockLevel != nil {
		d.MinStockLevel = *r.MinStockLevel
	}
	if r.SupplierID != nil {
		d.SupplierID = r.SupplierID
	}
	return d
}
