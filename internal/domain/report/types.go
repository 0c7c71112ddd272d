package report

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of money in the combined ledger
type EntryType string

const (
	EntryTypeIncome  EntryType = "Income"
	EntryTypeExpense EntryType = "Expense"
)

// EntryStatus is the single settlement vocabulary shared by every source
type EntryStatus string

const (
	EntryStatusPaid    EntryStatus = "Paid"
	EntryStatusPending EntryStatus = "Pending"
	EntryStatusOverdue EntryStatus = "Overdue"
)

// Source identifies which stored record kind produced a ledger entry
type Source string

const (
	SourceInvoice       Source = "Invoice"
	SourceStockPurchase Source = "Stock Purchase"
	SourceManual        Source = "Manual"
)

// slug is the URL-safe prefix used in combined entry ids
func (s Source) slug() string {
	switch s {
	case SourceInvoice:
		return "invoice"
	case SourceStockPurchase:
		return "stock-purchase"
	case SourceManual:
		return "manual"
	}
	return strings.ToLower(strings.ReplaceAll(string(s), " ", "-"))
}

// CombinedTransaction is a derived, non-persisted ledger row.
// Amount is always a magnitude; Type carries the sign.
type CombinedTransaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EntryType       `json:"type"`
	Status      EntryStatus     `json:"status"`
	Source      Source          `json:"source"`
	SourceID    uuid.UUID       `json:"source_id"`
}

// LedgerFilter selects entries by type and status. An empty value or "all"
// disables the predicate.
type LedgerFilter struct {
	Type   string `json:"type" form:"type"`
	Status string `json:"status" form:"status"`
}

// LedgerStats summarizes a ledger. Income, expenses and net flow cover the
// current month; receivables cover every outstanding invoice.
type LedgerStats struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetFlow          decimal.Decimal `json:"net_flow"`
	TotalReceivables decimal.Decimal `json:"total_receivables"`
}

// MonthlySummary is settled cash flow for one calendar month
type MonthlySummary struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// InventoryValuation is the value of active stock on hand
type InventoryValuation struct {
	TotalParts    int             `json:"total_parts"`
	TotalUnits    int             `json:"total_units"`
	CostValue     decimal.Decimal `json:"cost_value"`
	RetailValue   decimal.Decimal `json:"retail_value"`
	LowStockCount int             `json:"low_stock_count"`
}
