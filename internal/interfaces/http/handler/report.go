package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/shopledger/backend/internal/application/report"
)

// ReportHandler serves the combined ledger and derived reports
type ReportHandler struct {
	BaseHandler
	ledgerService *reportapp.LedgerService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(ledgerService *reportapp.LedgerService) *ReportHandler {
	return &ReportHandler{ledgerService: ledgerService}
}

// RegisterRoutes mounts the report routes under /reports
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/ledger", h.Ledger)
	reports.GET("/cash-flow", h.CashFlow)
	reports.GET("/inventory", h.Inventory)
}

// Ledger returns the filtered combined ledger with stats over every row
func (h *ReportHandler) Ledger(c *gin.Context) {
	var query reportapp.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	ledger, err := h.ledgerService.Ledger(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// CashFlow returns paid income and expenses per month
func (h *ReportHandler) CashFlow(c *gin.Context) {
	flow, err := h.ledgerService.CashFlow(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flow)
}

// Inventory returns the stock valuation
func (h *ReportHandler) Inventory(c *gin.Context) {
	valuation, err := h.ledgerService.Inventory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, valuation)
}
