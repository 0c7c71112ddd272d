package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopledger/backend/internal/application/catalog"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
)

// PartHandler handles part (inventory) endpoints
type PartHandler struct {
	BaseHandler
	partService *catalogapp.PartService
}

// NewPartHandler creates a new PartHandler
func NewPartHandler(partService *catalogapp.PartService) *PartHandler {
	return &PartHandler{partService: partService}
}

// RegisterRoutes mounts the part routes under /parts
func (h *PartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	parts := rg.Group("/parts")
	parts.GET("", h.List)
	parts.POST("", h.Create)
	parts.POST("/batch", h.CreateBatch)
	parts.POST("/import", h.Import)
	parts.GET("/low-stock", h.LowStock)
	parts.GET("/:id", h.GetByID)
	parts.PUT("/:id", h.Update)
	parts.DELETE("/:id", h.Delete)
	parts.POST("/:id/deactivate", h.Deactivate)
	parts.POST("/:id/restore", h.Restore)
	parts.POST("/:id/stock", h.AdjustStock)
}

// List returns a page of parts
func (h *PartHandler) List(c *gin.Context) {
	var filter catalogapp.PartListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	parts, total, err := h.partService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, parts, total, filter.Page, filter.PageSize)
}

// LowStock returns active parts at or below their minimum stock level
func (h *PartHandler) LowStock(c *gin.Context) {
	parts, err := h.partService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, parts)
}

// GetByID returns one part
func (h *PartHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	part, err := h.partService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Create adds a part
func (h *PartHandler) Create(c *gin.Context) {
	var req catalogapp.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	part, err := h.partService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, part)
}

// CreateBatch imports parts atomically
func (h *PartHandler) CreateBatch(c *gin.Context) {
	reqs, ok := bindBatch[catalogapp.CreatePartRequest](&h.BaseHandler, c)
	if !ok {
		return
	}
	parts, err := h.partService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, parts)
}

// Import creates parts from a CSV upload, sent either as the multipart
// field "file" or as the raw request body. Row failures reject the whole file.
func (h *PartHandler) Import(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			h.BadRequest(c, "Missing CSV file in form field 'file'")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			h.BadRequest(c, "Unable to read uploaded file")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.partService.ImportCSV(c.Request.Context(), body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		details := make([]dto.ValidationDetail, 0, len(result.Errors))
		for _, rowErr := range result.Errors {
			field := fmt.Sprintf("row %d", rowErr.Row)
			if rowErr.Column != "" {
				field += "." + rowErr.Column
			}
			details = append(details, dto.ValidationDetail{Field: field, Message: rowErr.Message})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("CSV import rejected", getRequestID(c), details))
		return
	}
	h.Created(c, result)
}

// Update applies a partial update
func (h *PartHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	var req catalogapp.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	part, err := h.partService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// AdjustStock adds or issues stock
func (h *PartHandler) AdjustStock(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	part, err := h.partService.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Delete removes a part permanently
func (h *PartHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	if err := h.partService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Deactivate soft-deletes a part
func (h *PartHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	part, err := h.partService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Restore reactivates a part
func (h *PartHandler) Restore(c *gin.Context) {
	id, ok := h.pathID(c, "part")
	if !ok {
		return
	}
	part, err := h.partService.Restore(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}
