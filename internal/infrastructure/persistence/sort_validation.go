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

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"sale_price":     true,
	"stock_quantity": true,
	"min_stock":      true,
	"active":         true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"document_code": true,
	"email":         true,
	"active":        true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"document_code": true,
	"email":         true,
	"active":        true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"supplier_id":     true,
	"supplier_name":   true,
	"issue_date":      true,
	"due_date":        true,
	"total":           true,
	"status":          true,
}

// SalesOrderSortFields contains allowed sort fields for sales orders
var SalesOrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"customer_id":     true,
	"customer_name":   true,
	"total":           true,
	"status":          true,
}

// SettledSaleSortFields contains allowed sort fields for settled sales
var SettledSaleSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"document_number": true,
	"customer_id":     true,
	"customer_name":   true,
	"final_total":     true,
	"settled_at":      true,
}
