package report

import (
	"github.com/shopledger/backend/internal/domain/report"
)

// LedgerQuery selects ledger rows. Empty or "all" fields match everything.
type LedgerQuery struct {
	Type   string `form:"type" binding:"omitempty,oneof=all income expense Income Expense"`
	Status string `form:"status" binding:"omitempty,oneof=all paid pending overdue Paid Pending Overdue"`
	Search string `form:"search" binding:"max=200"`
}

// LedgerResponse is the filtered ledger with stats over every row
type LedgerResponse struct {
	Transactions []report.CombinedTransaction `json:"transactions"`
	Stats        report.LedgerStats           `json:"stats"`
	Total        int                          `json:"total"`
}

// CashFlowResponse is the paid cash flow per month, newest first
type CashFlowResponse struct {
	Months []report.MonthlySummary `json:"months"`
}
