package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/shopledger/backend/internal/application/partner"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// RegisterRoutes mounts the supplier routes under /suppliers
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	suppliers.GET("", h.List)
	suppliers.POST("", h.Create)
	suppliers.POST("/batch", h.CreateBatch)
	suppliers.GET("/:id", h.GetByID)
	suppliers.PUT("/:id", h.Update)
	suppliers.DELETE("/:id", h.Delete)
	suppliers.POST("/:id/deactivate", h.Deactivate)
	suppliers.POST("/:id/restore", h.Restore)
}

// List returns a page of suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// GetByID returns one supplier
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "supplier")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create adds a supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// CreateBatch imports suppliers atomically
func (h *SupplierHandler) CreateBatch(c *gin.Context) {
	reqs, ok := bindBatch[partnerapp.CreateSupplierRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	suppliers, err := h.supplierService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, suppliers)
}

// Update applies a partial update
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "supplier")
	if !ok {
		return
	}
	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete removes a supplier permanently
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "supplier")
	if !ok {
		return
	}
	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Deactivate soft-deletes a supplier
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "supplier")
	if !ok {
		return
	}
	supplier, err := h.supplierService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Restore reactivates a supplier
func (h *SupplierHandler) Restore(c *gin.Context) {
	id, ok := h.pathID(c, "supplier")
	if !ok {
		return
	}
	supplier, err := h.supplierService.Restore(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}
