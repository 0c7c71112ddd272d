package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Column whitelists per table. Only these names may appear in where maps,
// ORDER BY clauses and search field lists.

// CommonSortFields contains the envelope columns every table carries
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"version":    true,
}

func withCommon(fields ...string) map[string]bool {
	out := make(map[string]bool, len(CommonSortFields)+len(fields))
	for k := range CommonSortFields {
		out[k] = true
	}
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// PartColumns contains the queryable columns of parts
var PartColumns = withCommon(
	"name", "part_number", "category_id", "purchase_price", "selling_price",
	"mrp", "quantity", "min_stock_level", "supplier_id", "status",
)

// SupplierColumns contains the queryable columns of suppliers
var SupplierColumns = withCommon(
	"name", "contact_person", "phone", "email", "address", "status",
)

// TransactionColumns contains the queryable columns of transactions
var TransactionColumns = withCommon(
	"description", "amount", "transaction_type", "category", "payment_method",
	"recorded_by", "status", "transaction_date", "payment_date",
)

// InvoiceColumns contains the queryable columns of invoices
var InvoiceColumns = withCommon(
	"customer_id", "customer_name", "customer_phone", "invoice_number",
	"invoice_date", "subtotal", "total", "status", "payment_method",
	"payment_date", "notes",
)

// StockPurchaseColumns contains the queryable columns of stock purchases
var StockPurchaseColumns = withCommon(
	"supplier_id", "supplier_name", "purchase_date", "total", "status", "notes",
)
