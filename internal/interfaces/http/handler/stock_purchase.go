package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopledger/backend/internal/application/trade"
)

// StockPurchaseHandler handles stock purchase endpoints
type StockPurchaseHandler struct {
	BaseHandler
	purchaseService *tradeapp.StockPurchaseService
}

// NewStockPurchaseHandler creates a new StockPurchaseHandler
func NewStockPurchaseHandler(purchaseService *tradeapp.StockPurchaseService) *StockPurchaseHandler {
	return &StockPurchaseHandler{purchaseService: purchaseService}
}

// RegisterRoutes mounts the purchase routes under /stock-purchases
func (h *StockPurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/stock-purchases")
	purchases.GET("", h.List)
	purchases.POST("", h.Create)
	purchases.POST("/batch", h.CreateBatch)
	purchases.GET("/:id", h.GetByID)
	purchases.PUT("/:id", h.Update)
	purchases.DELETE("/:id", h.Delete)
	purchases.POST("/:id/receive", h.Receive)
	purchases.POST("/:id/cancel", h.Cancel)
}

// List returns a page of stock purchases
func (h *StockPurchaseHandler) List(c *gin.Context) {
	var filter tradeapp.StockPurchaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	purchases, total, err := h.purchaseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchases, total, filter.Page, filter.PageSize)
}

// GetByID returns one purchase with its items
func (h *StockPurchaseHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "stock purchase")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Create records a pending purchase
func (h *StockPurchaseHandler) Create(c *gin.Context) {
	var req tradeapp.CreateStockPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	purchase, err := h.purchaseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// CreateBatch imports purchases atomically
func (h *StockPurchaseHandler) CreateBatch(c *gin.Context) {
	reqs, ok := bindBatch[tradeapp.CreateStockPurchaseRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	purchases, err := h.purchaseService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchases)
}

// Update applies a partial update to a pending purchase
func (h *StockPurchaseHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "stock purchase")
	if !ok {
		return
	}
	var req tradeapp.UpdateStockPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	purchase, err := h.purchaseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Receive marks a purchase as received
func (h *StockPurchaseHandler) Receive(c *gin.Context) {
	id, ok := h.pathID(c, "stock purchase")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Cancel voids a pending purchase
func (h *StockPurchaseHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "stock purchase")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Delete removes a purchase permanently
func (h *StockPurchaseHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "stock purchase")
	if !ok {
		return
	}
	if err := h.purchaseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
