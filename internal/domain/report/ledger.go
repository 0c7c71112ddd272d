package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// OverdueAfterDays is how long an unpaid invoice stays Pending before the
// ledger reports it as Overdue
const OverdueAfterDays = 15

const filterAll = "all"

// Per-source status tables. A source status missing from its table maps to Pending.
var (
	invoiceStatuses = map[trade.InvoiceStatus]EntryStatus{
		trade.InvoiceStatusPaid:      EntryStatusPaid,
		trade.InvoiceStatusOverdue:   EntryStatusOverdue,
		trade.InvoiceStatusDraft:     EntryStatusPending,
		trade.InvoiceStatusSent:      EntryStatusPending,
		trade.InvoiceStatusCancelled: EntryStatusPending,
	}
	stockPurchaseStatuses = map[trade.StockPurchaseStatus]EntryStatus{
		trade.StockPurchaseStatusReceived:  EntryStatusPaid,
		trade.StockPurchaseStatusPending:   EntryStatusPending,
		trade.StockPurchaseStatusCancelled: EntryStatusPending,
	}
	transactionStatuses = map[finance.TransactionStatus]EntryStatus{
		finance.TransactionStatusCompleted: EntryStatusPaid,
		finance.TransactionStatusPending:   EntryStatusPending,
		finance.TransactionStatusCancelled: EntryStatusPending,
	}
)

// Ledger turns invoices, stock purchases and manual transactions into one
// ordered cash ledger. It never fails: malformed records are logged and
// either repaired or skipped.
type Ledger struct {
	now    func() time.Time
	logger *zap.Logger
}

// LedgerOption is a functional option for configuring Ledger
type LedgerOption func(*Ledger)

// WithClock sets the clock used for "today", the overdue cutoff and the
// current month
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a new Ledger
func NewLedger(logger *zap.Logger, opts ...LedgerOption) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the current UTC date
func (l *Ledger) Today() string {
	return l.now().UTC().Format(shared.DateLayout)
}

// ValidateDate returns value as a YYYY-MM-DD string when it is a usable date.
// Anything else is logged with context and recordID and replaced by today.
// A valid date string is returned unchanged.
func (l *Ledger) ValidateDate(value any, context, recordID string) string {
	switch v := value.(type) {
	case string:
		if isISODate(v) {
			return v
		}
	case *string:
		if v != nil && isISODate(*v) {
			return *v
		}
	case time.Time:
		if !v.IsZero() {
			return v.UTC().Format(shared.DateLayout)
		}
	}

	today := l.Today()
	l.logger.Warn("Invalid date, using today",
		zap.String("context", context),
		zap.String("record_id", recordID),
		zap.Any("value", value),
		zap.String("substitute", today),
	)
	return today
}

func isISODate(value string) bool {
	if _, err := time.Parse(shared.DateLayout, value); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

// Combine merges the three sources into one ledger sorted by date, newest
// first. Entries sharing a date keep merge order: invoices, then stock
// purchases, then transactions.
func (l *Ledger) Combine(
	invoices []*trade.Invoice,
	purchases []*trade.StockPurchase,
	transactions []*finance.Transaction,
) []CombinedTransaction {
	combined := make([]CombinedTransaction, 0, len(invoices)+len(purchases)+len(transactions))
	overdueCutoff := l.now().UTC().AddDate(0, 0, -OverdueAfterDays).Format(shared.DateLayout)

	for i, inv := range invoices {
		if inv == nil {
			l.logger.Warn("Skipping nil invoice", zap.Int("index", i))
			continue
		}
		entry, ok := l.entry(SourceInvoice, inv.ID, inv.InvoiceDate)
		if !ok {
			continue
		}
		entry.Description = fmt.Sprintf("Invoice #%s - %s", inv.InvoiceNumber, inv.CustomerName)
		entry.Amount = inv.Total.Abs()
		entry.Type = EntryTypeIncome
		entry.Status = lookupStatus(invoiceStatuses, inv.Status)
		if entry.Status == EntryStatusPending && dayPrefix(entry.Date) < overdueCutoff {
			entry.Status = EntryStatusOverdue
		}
		combined = append(combined, entry)
	}

	for i, sp := range purchases {
		if sp == nil {
			l.logger.Warn("Skipping nil stock purchase", zap.Int("index", i))
			continue
		}
		entry, ok := l.entry(SourceStockPurchase, sp.ID, sp.PurchaseDate)
		if !ok {
			continue
		}
		entry.Description = "Stock purchase from " + sp.SupplierName
		entry.Amount = sp.Total.Abs()
		entry.Type = EntryTypeExpense
		entry.Status = lookupStatus(stockPurchaseStatuses, sp.Status)
		combined = append(combined, entry)
	}

	for i, tx := range transactions {
		if tx == nil {
			l.logger.Warn("Skipping nil transaction", zap.Int("index", i))
			continue
		}
		entry, ok := l.entry(SourceManual, tx.ID, tx.TransactionDate)
		if !ok {
			continue
		}
		entry.Description = tx.Description
		entry.Amount = tx.Amount.Abs()
		entry.Type = EntryTypeExpense
		if tx.Type == finance.TransactionTypeIncome {
			entry.Type = EntryTypeIncome
		}
		entry.Status = lookupStatus(transactionStatuses, tx.Status)
		combined = append(combined, entry)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Date > combined[j].Date
	})
	return combined
}

// entry starts a ledger row. Records without an id or a date are dropped.
func (l *Ledger) entry(source Source, id uuid.UUID, date string) (CombinedTransaction, bool) {
	if id == uuid.Nil || strings.TrimSpace(date) == "" {
		l.logger.Warn("Dropping record without id or date",
			zap.String("source", string(source)),
			zap.String("record_id", id.String()),
		)
		return CombinedTransaction{}, false
	}
	return CombinedTransaction{
		ID:       fmt.Sprintf("%s-%s", source.slug(), id),
		Date:     l.ValidateDate(date, string(source), id.String()),
		Source:   source,
		SourceID: id,
	}, true
}

func lookupStatus[S comparable](table map[S]EntryStatus, status S) EntryStatus {
	if mapped, ok := table[status]; ok {
		return mapped
	}
	return EntryStatusPending
}

// dayPrefix reduces an RFC 3339 timestamp to its date so it compares with
// plain dates
func dayPrefix(date string) string {
	if len(date) > len(shared.DateLayout) {
		return date[:len(shared.DateLayout)]
	}
	return date
}

// FilterTransactions keeps entries matching the type filter, the status
// filter and the search term. Every comparison ignores case.
func (l *Ledger) FilterTransactions(list []CombinedTransaction, filter LedgerFilter, search string) []CombinedTransaction {
	fold := cases.Fold()
	wantType := fold.String(strings.TrimSpace(filter.Type))
	wantStatus := fold.String(strings.TrimSpace(filter.Status))
	term := fold.String(strings.TrimSpace(search))

	filtered := make([]CombinedTransaction, 0, len(list))
	for _, entry := range list {
		entryType := fold.String(string(entry.Type))
		entryStatus := fold.String(string(entry.Status))

		if wantType != "" && wantType != filterAll && entryType != wantType {
			continue
		}
		if wantStatus != "" && wantStatus != filterAll && entryStatus != wantStatus {
			continue
		}
		if term != "" &&
			!strings.Contains(fold.String(entry.Description), term) &&
			!strings.Contains(entryType, term) &&
			!strings.Contains(entryStatus, term) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// CalculateStats totals paid income and expenses from the 1st of the current
// local month onward, and outstanding receivables over the whole list.
func (l *Ledger) CalculateStats(list []CombinedTransaction) LedgerStats {
	stats := LedgerStats{
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
		NetFlow:          decimal.Zero,
		TotalReceivables: decimal.Zero,
	}
	if len(list) == 0 {
		return stats
	}

	now := l.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(shared.DateLayout)

	for _, entry := range list {
		if entry.Type == EntryTypeIncome && (entry.Status == EntryStatusPending || entry.Status == EntryStatusOverdue) {
			stats.TotalReceivables = stats.TotalReceivables.Add(entry.Amount)
		}
		if entry.Status != EntryStatusPaid || dayPrefix(entry.Date) < monthStart {
			continue
		}
		switch entry.Type {
		case EntryTypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(entry.Amount)
		case EntryTypeExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(entry.Amount)
		}
	}
	stats.NetFlow = stats.TotalIncome.Sub(stats.TotalExpenses)
	return stats
}

// MonthlyBreakdown groups paid entries by calendar month, newest month first
func (l *Ledger) MonthlyBreakdown(list []CombinedTransaction) []MonthlySummary {
	byMonth := make(map[string]*MonthlySummary)
	for _, entry := range list {
		if entry.Status != EntryStatusPaid || len(entry.Date) < len("2006-01") {
			continue
		}
		month := entry.Date[:len("2006-01")]
		summary, ok := byMonth[month]
		if !ok {
			summary = &MonthlySummary{Month: month, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[month] = summary
		}
		if entry.Type == EntryTypeIncome {
			summary.Income = summary.Income.Add(entry.Amount)
		} else {
			summary.Expenses = summary.Expenses.Add(entry.Amount)
		}
	}

	months := make([]MonthlySummary, 0, len(byMonth))
	for _, summary := range byMonth {
		summary.Net = summary.Income.Sub(summary.Expenses)
		months = append(months, *summary)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month > months[j].Month
	})
	return months
}

// ValueInventory values active stock at purchase price and at selling price
func (l *Ledger) ValueInventory(parts []*catalog.Part) InventoryValuation {
	valuation := InventoryValuation{CostValue: decimal.Zero, RetailValue: decimal.Zero}
	for i, part := range parts {
		if part == nil {
			l.logger.Warn("Skipping nil part", zap.Int("index", i))
			continue
		}
		if !part.IsActive() {
			continue
		}
		units := decimal.NewFromInt(int64(part.Quantity))
		valuation.TotalParts++
		valuation.TotalUnits += part.Quantity
		valuation.CostValue = valuation.CostValue.Add(part.PurchasePrice.Mul(units))
		valuation.RetailValue = valuation.RetailValue.Add(part.SellingPrice.Mul(units))
		if part.IsLowStock() {
			valuation.LowStockCount++
		}
	}
	return valuation
}
