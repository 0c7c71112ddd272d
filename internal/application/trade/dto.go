package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// InvoiceItemInput is one billed line in a request
type InvoiceItemInput struct {
	Description        string          `json:"description" binding:"required,max=500"`
	Quantity           int             `json:"quantity" binding:"required,min=1"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// CreateInvoiceRequest represents a request to issue a draft invoice.
// An empty InvoiceDate means today.
type CreateInvoiceRequest struct {
	CustomerID    *uuid.UUID         `json:"customer_id"`
	CustomerName  string             `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone string             `json:"customer_phone" binding:"max=20"`
	InvoiceNumber string             `json:"invoice_number" binding:"required,min=1,max=50"`
	InvoiceDate   string             `json:"invoice_date"`
	PaymentMethod string             `json:"payment_method" binding:"max=50"`
	Notes         string             `json:"notes" binding:"max=2000"`
	Items         []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a partial update. Nil fields keep their
// value; a non-nil Items replaces every line.
type UpdateInvoiceRequest struct {
	CustomerID    *uuid.UUID         `json:"customer_id"`
	CustomerName  *string            `json:"customer_name" binding:"omitempty,min=1,max=200"`
	CustomerPhone *string            `json:"customer_phone" binding:"omitempty,max=20"`
	InvoiceNumber *string            `json:"invoice_number" binding:"omitempty,min=1,max=50"`
	InvoiceDate   *string            `json:"invoice_date"`
	PaymentMethod *string            `json:"payment_method" binding:"omitempty,max=50"`
	Notes         *string            `json:"notes" binding:"omitempty,max=2000"`
	Items         []InvoiceItemInput `json:"items" binding:"omitempty,min=1,dive"`
}

// PayInvoiceRequest settles an invoice. An empty date means today.
type PayInvoiceRequest struct {
	PaymentMethod string `json:"payment_method" binding:"max=50"`
	PaymentDate   string `json:"payment_date"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// InvoiceItemResponse is one billed line in API responses
type InvoiceItemResponse struct {
	Description        string          `json:"description"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	CustomerID    *uuid.UUID            `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone string                `json:"customer_phone"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceDate   string                `json:"invoice_date"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	PaymentDate   *string               `json:"payment_date"`
	Notes         string                `json:"notes"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *trade.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			LineTotal:          item.LineTotal,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		Subtotal:      inv.Subtotal,
		Total:         inv.Total,
		Status:        string(inv.Status),
		PaymentMethod: inv.PaymentMethod,
		PaymentDate:   inv.PaymentDate,
		Notes:         inv.Notes,
		Items:         items,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []*trade.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = ToInvoiceResponse(inv)
	}
	return responses
}

func invoiceItems(inputs []InvoiceItemInput) []trade.InvoiceItem {
	items := make([]trade.InvoiceItem, len(inputs))
	for i, in := range inputs {
		items[i] = trade.InvoiceItem{
			Description:        in.Description,
			Quantity:           in.Quantity,
			UnitPrice:          in.UnitPrice,
			DiscountPercentage: in.DiscountPercentage,
		}
	}
	return items
}

func (r CreateInvoiceRequest) details(today string) trade.InvoiceDetails {
	date := r.InvoiceDate
	if date == "" {
		date = today
	}
	return trade.InvoiceDetails{
		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   date,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
		Items:         invoiceItems(r.Items),
	}
}

func (r UpdateInvoiceRequest) merge(d trade.InvoiceDetails) trade.InvoiceDetails {
	if r.CustomerID != nil {
		d.CustomerID = r.CustomerID
	}
	if r.CustomerName != nil {
		d.CustomerName = *r.CustomerName
	}
	if r.CustomerPhone != nil {
		d.CustomerPhone = *r.CustomerPhone
	}
	if r.InvoiceNumber != nil {
		d.InvoiceNumber = *r.InvoiceNumber
	}
	if r.InvoiceDate != nil {
		d.InvoiceDate = *r.InvoiceDate
	}
	if r.PaymentMethod != nil {
		d.PaymentMethod = *r.PaymentMethod
	}
	if r.Notes != nil {
		d.Notes = *r.Notes
	}
	if r.Items != nil {
		d.Items = invoiceItems(r.Items)
	}
	return d
}

// StockPurchaseItemInput is one purchased line in a request
type StockPurchaseItemInput struct {
	Name          string          `json:"name" binding:"required,max=200"`
	PartNumber    string          `json:"part_number" binding:"max=50"`
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal `json:"mrp"`
}

// CreateStockPurchaseRequest represents a request to record a purchase.
// An empty PurchaseDate means today.
type CreateStockPurchaseRequest struct {
	SupplierID   *uuid.UUID               `json:"supplier_id"`
	SupplierName string                   `json:"supplier_name" binding:"required,min=1,max=200"`
	PurchaseDate string                   `json:"purchase_date"`
	Notes        string                   `json:"notes" binding:"max=2000"`
	Items        []StockPurchaseItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateStockPurchaseRequest represents a partial update of a pending purchase
type UpdateStockPurchaseRequest struct {
	SupplierID   *uuid.UUID               `json:"supplier_id"`
	SupplierName *string                  `json:"supplier_name" binding:"omitempty,min=1,max=200"`
	PurchaseDate *string                  `json:"purchase_date"`
	Notes        *string                  `json:"notes" binding:"omitempty,max=2000"`
	Items        []StockPurchaseItemInput `json:"items" binding:"omitempty,min=1,dive"`
}

// StockPurchaseListFilter represents filter options for the purchase list
type StockPurchaseListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending received cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// StockPurchaseItemResponse is one purchased line in API responses
type StockPurchaseItemResponse struct {
	Name          string          `json:"name"`
	PartNumber    string          `json:"part_number"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal `json:"mrp"`
	Amount        decimal.Decimal `json:"amount"`
}

// StockPurchaseResponse represents a stock purchase in API responses
type StockPurchaseResponse struct {
	ID           uuid.UUID                   `json:"id"`
	SupplierID   *uuid.UUID                  `json:"supplier_id"`
	SupplierName string                      `json:"supplier_name"`
	PurchaseDate string                      `json:"purchase_date"`
	Total        decimal.Decimal             `json:"total"`
	Status       string                      `json:"status"`
	Notes        string                      `json:"notes"`
	Items        []StockPurchaseItemResponse `json:"items"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Version      int                         `json:"version"`
}

// ToStockPurchaseResponse converts a domain StockPurchase to StockPurchaseResponse
func ToStockPurchaseResponse(sp *trade.StockPurchase) StockPurchaseResponse {
	items := make([]StockPurchaseItemResponse, len(sp.Items))
	for i, item := range sp.Items {
		items[i] = StockPurchaseItemResponse{
			Name:          item.Name,
			PartNumber:    item.PartNumber,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
			MRP:           item.MRP,
			Amount:        item.Amount(),
		}
	}
	return StockPurchaseResponse{
		ID:           sp.ID,
		SupplierID:   sp.SupplierID,
		SupplierName: sp.SupplierName,
		PurchaseDate: sp.PurchaseDate,
		Total:        sp.Total,
		Status:       string(sp.Status),
		Notes:        sp.Notes,
		Items:        items,
		CreatedAt:    sp.CreatedAt,
		UpdatedAt:    sp.UpdatedAt,
		Version:      sp.Version,
	}
}

// ToStockPurchaseResponses converts a slice of stock purchases
func ToStockPurchaseResponses(purchases []*trade.StockPurchase) []StockPurchaseResponse {
	responses := make([]StockPurchaseResponse, len(purchases))
	for i, sp := range purchases {
		responses[i] = ToStockPurchaseResponse(sp)
	}
	return responses
}

func purchaseItems(inputs []StockPurchaseItemInput) []trade.StockPurchaseItem {
	items := make([]trade.StockPurchaseItem, len(inputs))
	for i, in := range inputs {
		items[i] = trade.StockPurchaseItem{
			Name:          in.Name,
			PartNumber:    in.PartNumber,
			Quantity:      in.Quantity,
			PurchasePrice: in.PurchasePrice,
			MRP:           in.MRP,
		}
	}
	return items
}

func (r CreateStockPurchaseRequest) details(today string) trade.StockPurchaseDetails {
	date := r.PurchaseDate
	if date == "" {
		date = today
	}
	return trade.StockPurchaseDetails{
		SupplierID:   r.SupplierID,
		SupplierName: r.SupplierName,
		PurchaseDate: date,
		Notes:        r.Notes,
		Items:        purchaseItems(r.Items),
	}
}

func (r UpdateStockPurchaseRequest) merge(d trade.StockPurchaseDetails) trade.StockPurchaseDetails {
	if r.SupplierID != nil {
		d.SupplierID = r.SupplierID
	}
	if r.SupplierName != nil {
		d.SupplierName = *r.SupplierName
	}
	if r.PurchaseDate != nil {
		d.PurchaseDate = *r.PurchaseDate
	}
	if r.Notes != nil {
		d.Notes = *r.Notes
	}
	if r.Items != nil {
		d.Items = purchaseItems(r.Items)
	}
	return d
}
