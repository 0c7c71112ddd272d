package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	financeapp "github.com/shopledger/backend/internal/application/finance"
)

// TransactionHandler handles manual ledger entry endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService *financeapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *financeapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// RegisterRoutes mounts the transaction routes under /transactions
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	txs := rg.Group("/transactions")
	txs.GET("", h.List)
	txs.POST("", h.Create)
	txs.POST("/batch", h.CreateBatch)
	txs.GET("/:id", h.GetByID)
	txs.PUT("/:id", h.Update)
	txs.DELETE("/:id", h.Delete)
	txs.POST("/:id/complete", h.Complete)
	txs.POST("/:id/cancel", h.Cancel)
}

// List returns a page of transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter financeapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	txs, total, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// GetByID returns one transaction
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	tx, err := h.transactionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Create records a transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	var req financeapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	tx, err := h.transactionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// CreateBatch imports transactions atomically
func (h *TransactionHandler) CreateBatch(c *gin.Context) {
	reqs, ok := bindBatch[financeapp.CreateTransactionRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	txs, err := h.transactionService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txs)
}

// Update applies a partial update
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req financeapp.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	tx, err := h.transactionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Complete settles a pending transaction. The body is optional.
func (h *TransactionHandler) Complete(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req financeapp.CompleteTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}
	tx, err := h.transactionService.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Cancel voids a pending transaction
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	tx, err := h.transactionService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete removes a transaction permanently
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	if err := h.transactionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
