package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopledger/backend/internal/application/trade"
)

// InvoiceHandler handles sales invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *tradeapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *tradeapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes mounts the invoice routes under /invoices
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.GET("", h.List)
	invoices.POST("", h.Create)
	invoices.POST("/batch", h.CreateBatch)
	invoices.GET("/:id", h.GetByID)
	invoices.PUT("/:id", h.Update)
	invoices.DELETE("/:id", h.Delete)
	invoices.POST("/:id/send", h.Send)
	invoices.POST("/:id/pay", h.Pay)
	invoices.POST("/:id/cancel", h.Cancel)
}

// List returns a page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter tradeapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// GetByID returns one invoice with its lines
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Create issues a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req tradeapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// CreateBatch imports invoices atomically
func (h *InvoiceHandler) CreateBatch(c *gin.Context) {
	reqs, ok := bindBatch[tradeapp.CreateInvoiceRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	invoices, err := h.invoiceService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoices)
}

// Update applies a partial update to an unpaid invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req tradeapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoice, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Send moves a draft invoice to sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Pay marks an invoice paid. The body is optional.
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req tradeapp.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}
	invoice, err := h.invoiceService.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Cancel voids an unpaid invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete removes an invoice permanently
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
