package persistence

import (
	"strings"
)

// ValidateSortOrder folds a caller-supplied direction to ASC or DESC.
// Anything that is not ASC comes back as DESC, newest first.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a sort column against a whitelist. Sort fields
// are interpolated into ORDER BY clauses, so unknown names fall back to
// defaultField instead of reaching the query.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields lists the order columns list endpoints may sort by.
var OrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"type":          true,
	"status":        true,
	"customer_name": true,
	"total":         true,
	"collected":     true,
	"paid_at":       true,
}

// CreditNoteSortFields lists the credit note columns list endpoints may sort by.
var CreditNoteSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"note_number":    true,
	"customer_name":  true,
	"total_original": true,
	"total_used":     true,
	"cancelled":      true,
}
