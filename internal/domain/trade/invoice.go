package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether s is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// InvoiceItem is one billed line
type InvoiceItem struct {
	Description        string
	Quantity           int
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	LineTotal          decimal.Decimal
}

// CalculateLineTotal returns quantity * unit price less the percentage discount
func (i InvoiceItem) CalculateLineTotal() decimal.Decimal {
	gross := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	factor := hundred.Sub(i.DiscountPercentage).Div(hundred)
	return gross.Mul(factor).Round(2)
}

// Invoice is a sales invoice issued to a customer. The customer's name and
// phone are snapshotted so later customer edits do not rewrite history.
type Invoice struct {
	shared.BaseAggregateRoot
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerPhone string
	InvoiceNumber string
	InvoiceDate   string
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	Status        InvoiceStatus
	PaymentMethod string
	PaymentDate   *string
	Notes         string
	Items         []InvoiceItem
}

// InvoiceDetails carries the editable fields of an invoice
type InvoiceDetails struct {
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerPhone string
	InvoiceNumber string
	InvoiceDate   string
	PaymentMethod string
	Notes         string
	Items         []InvoiceItem
}

// NewInvoice creates a draft invoice with computed totals
func NewInvoice(details InvoiceDetails) (*Invoice, error) {
	inv := &Invoice{Status: InvoiceStatusDraft}
	if err := inv.Apply(details); err != nil {
		return nil, err
	}
	return inv, nil
}

// Details returns the editable fields
func (inv *Invoice) Details() InvoiceDetails {
	items := make([]InvoiceItem, len(inv.Items))
	copy(items, inv.Items)
	return InvoiceDetails{
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		Items:         items,
	}
}

// Apply validates details, replaces the editable fields and recalculates totals.
// Paid and cancelled invoices are frozen.
func (inv *Invoice) Apply(details InvoiceDetails) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}

	number := shared.SanitizeText(details.InvoiceNumber)
	if err := shared.RequireText("invoice_number", number); err != nil {
		return err
	}
	customer := shared.SanitizeText(details.CustomerName)
	if err := shared.RequireText("customer_name", customer); err != nil {
		return err
	}
	phone, err := shared.NormalizePhone(details.CustomerPhone)
	if err != nil {
		return err
	}
	if err := shared.ValidateDate("invoice_date", details.InvoiceDate); err != nil {
		return err
	}
	items, err := normalizeInvoiceItems(details.Items)
	if err != nil {
		return err
	}

	inv.CustomerID = details.CustomerID
	inv.CustomerName = customer
	inv.CustomerPhone = phone
	inv.InvoiceNumber = number
	inv.InvoiceDate = details.InvoiceDate
	inv.PaymentMethod = shared.SanitizeText(details.PaymentMethod)
	inv.Notes = details.Notes
	inv.Items = items
	inv.Recalculate()
	return nil
}

// Recalculate derives line totals, subtotal and total from the items
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].LineTotal = inv.Items[i].CalculateLineTotal()
		subtotal = subtotal.Add(inv.Items[i].LineTotal)
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal
}

// Send marks a draft invoice as sent to the customer
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	inv.Status = InvoiceStatusSent
	return nil
}

// MarkPaid records settlement of the invoice
func (inv *Invoice) MarkPaid(paymentMethod, paymentDate string) error {
	switch inv.Status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice paid in %s status", inv.Status))
	}
	if err := shared.ValidateDate("payment_date", paymentDate); err != nil {
		return err
	}
	if method := shared.SanitizeText(paymentMethod); method != "" {
		inv.PaymentMethod = method
	}
	inv.Status = InvoiceStatusPaid
	inv.PaymentDate = &paymentDate
	return nil
}

// Cancel voids an unpaid invoice
func (inv *Invoice) Cancel() error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusCancelled
	return nil
}

func normalizeInvoiceItems(items []InvoiceItem) ([]InvoiceItem, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one line item")
	}
	out := make([]InvoiceItem, len(items))
	for i, item := range items {
		item.Description = shared.SanitizeText(item.Description)
		if item.Description == "" {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Line %d: description is required", i+1))
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Line %d: quantity must be positive", i+1))
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Line %d: unit price cannot be negative", i+1))
		}
		if item.DiscountPercentage.IsNegative() || item.DiscountPercentage.GreaterThan(hundred) {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Line %d: discount must be between 0 and 100", i+1))
		}
		out[i] = item
	}
	return out, nil
}
