package trade

import (
	"testing"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceDetails() InvoiceDetails {
	return InvoiceDetails{
		CustomerName:  "Anil Motors",
		CustomerPhone: "98110 22334",
		InvoiceNumber: "INV-0042",
		InvoiceDate:   "2026-10-12",
		PaymentMethod: "cash",
		Items: []InvoiceItem{
			{Description: "Clutch plate", Quantity: 2, UnitPrice: decimal.NewFromInt(1200), DiscountPercentage: decimal.NewFromInt(10)},
			{Description: "Labour", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	}
}

func TestNewInvoice(t *testing.T) {
	t.Run("computes line totals and totals", func(t *testing.T) {
		inv, err := NewInvoice(invoiceDetails())
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "9811022334", inv.CustomerPhone)
		assert.True(t, decimal.NewFromInt(2160).Equal(inv.Items[0].LineTotal))
		assert.True(t, decimal.NewFromInt(500).Equal(inv.Items[1].LineTotal))
		assert.True(t, decimal.NewFromInt(2660).Equal(inv.Subtotal))
		assert.True(t, inv.Total.Equal(inv.Subtotal))
	})

	tests := []struct {
		name   string
		mutate func(*InvoiceDetails)
	}{
		{"missing number", func(d *InvoiceDetails) { d.InvoiceNumber = "" }},
		{"missing customer", func(d *InvoiceDetails) { d.CustomerName = "" }},
		{"bad date", func(d *InvoiceDetails) { d.InvoiceDate = "12/10/2026" }},
		{"no items", func(d *InvoiceDetails) { d.Items = nil }},
		{"zero quantity", func(d *InvoiceDetails) { d.Items[0].Quantity = 0 }},
		{"discount over 100", func(d *InvoiceDetails) { d.Items[0].DiscountPercentage = decimal.NewFromInt(101) }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			d := invoiceDetails()
			tt.mutate(&d)
			_, err := NewInvoice(d)
			require.Error(t, err)
			assert.True(t, shared.IsValidationError(err))
		})
	}
}

func TestInvoice_StatusTransitions(t *testing.T) {
	t.Run("draft to sent to paid", func(t *testing.T) {
		inv, err := NewInvoice(invoiceDetails())
		require.NoError(t, err)

		require.NoError(t, inv.Send())
		assert.Error(t, inv.Send())

		require.NoError(t, inv.MarkPaid("upi", "2026-10-15"))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "upi", inv.PaymentMethod)
		require.NotNil(t, inv.PaymentDate)

		assert.ErrorIs(t, inv.Cancel(), shared.ErrInvalidState)
		assert.ErrorIs(t, inv.Apply(invoiceDetails()), shared.ErrInvalidState)
	})

	t.Run("cancelled invoice cannot be paid", func(t *testing.T) {
		inv, err := NewInvoice(invoiceDetails())
		require.NoError(t, err)
		require.NoError(t, inv.Cancel())
		assert.ErrorIs(t, inv.MarkPaid("cash", "2026-10-15"), shared.ErrInvalidState)
	})
}

func TestNewStockPurchase(t *testing.T) {
	details := StockPurchaseDetails{
		SupplierName: "Sharma Auto Spares",
		PurchaseDate: "2026-10-10",
		Items: []StockPurchaseItem{
			{Name: "Brake pad", PartNumber: "BP-1", Quantity: 10, PurchasePrice: decimal.NewFromInt(300), MRP: decimal.NewFromInt(550)},
			{Name: "Oil filter", PartNumber: "OF-7", Quantity: 5, PurchasePrice: decimal.RequireFromString("120.50")},
		},
	}

	sp, err := NewStockPurchase(details)
	require.NoError(t, err)
	assert.Equal(t, StockPurchaseStatusPending, sp.Status)
	assert.True(t, decimal.RequireFromString("3602.50").Equal(sp.Total))

	require.NoError(t, sp.Receive())
	assert.ErrorIs(t, sp.Cancel(), shared.ErrInvalidState)
	assert.ErrorIs(t, sp.Apply(details), shared.ErrInvalidState)

	details.Items = nil
	_, err = NewStockPurchase(details)
	assert.True(t, shared.IsValidationError(err))
}
