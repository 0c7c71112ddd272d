package handler

import (
	"net/http"
	"testing"

	tradeapp "github.com/shopledger/backend/internal/application/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createInvoice(t *testing.T, api *testAPI, number string) tradeapp.InvoiceResponse {
	t.Helper()
	w, env := api.do(t, http.MethodPost, "/invoices", map[string]any{
		"customer_name":  "Ravi Kumar",
		"invoice_number": number,
		"items": []map[string]any{
			{"description": "Brake service", "quantity": 2, "unit_price": "500", "discount_percentage": "10"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[tradeapp.InvoiceResponse](t, env)
}

func TestInvoiceHandler(t *testing.T) {
	api := newTestAPI(t, nil, nil)
	inv := createInvoice(t, api, "INV-001")

	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, "900", inv.Subtotal.String())
	assert.True(t, inv.Total.Equal(inv.Subtotal))
	require.Len(t, inv.Items, 1)

	t.Run("items are required", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/invoices", map[string]any{
			"customer_name":  "Ravi Kumar",
			"invoice_number": "INV-002",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("duplicate number", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/invoices", map[string]any{
			"customer_name":  "Someone Else",
			"invoice_number": "INV-001",
			"items":          []map[string]any{{"description": "Oil", "quantity": 1, "unit_price": "10"}},
		})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
	})

	t.Run("send then pay", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/invoices/"+inv.ID.String()+"/send", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "sent", decode[tradeapp.InvoiceResponse](t, env).Status)

		w, env = api.do(t, http.MethodPost, "/invoices/"+inv.ID.String()+"/pay", map[string]any{"payment_method": "upi"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		paid := decode[tradeapp.InvoiceResponse](t, env)
		assert.Equal(t, "paid", paid.Status)
		assert.Equal(t, "upi", paid.PaymentMethod)
		assert.NotNil(t, paid.PaymentDate)
	})

	t.Run("paying twice is rejected", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/invoices/"+inv.ID.String()+"/pay", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("cancelling a paid invoice is rejected", func(t *testing.T) {
		w, _ := api.do(t, http.MethodPost, "/invoices/"+inv.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("filter by status", func(t *testing.T) {
		createInvoice(t, api, "INV-003")

		w, env := api.do(t, http.MethodGet, "/invoices?status=paid", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), env.Meta.Total)

		w, env = api.do(t, http.MethodGet, "/invoices?status=bogus", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}
