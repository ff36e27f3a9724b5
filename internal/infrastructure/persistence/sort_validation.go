package persistence

import (
	"strings"

	"github.com/affiliate/backend/internal/domain/shared"
	"gorm.io/gorm"
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

// paginate applies a whitelisted ordering and the page window to query.
// Ties are broken by id so pages are stable.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	filter = filter.Normalized()
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "id" {
		query = query.Order("id DESC")
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// PartnerSortFields contains allowed sort fields for partner profiles
var PartnerSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"email":         true,
	"company_name":  true,
	"referral_code": true,
	"status":        true,
}

// ReferralSortFields contains allowed sort fields for referrals
var ReferralSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"submitted_at":         true,
	"client_name":          true,
	"client_company":       true,
	"product_name":         true,
	"status":               true,
	"potential_commission": true,
	"actual_commission":    true,
}

// EarningSortFields contains allowed sort fields for earnings
var EarningSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"amount":     true,
	"status":     true,
	"source":     true,
}

// PayoutSortFields contains allowed sort fields for payouts
var PayoutSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"request_date":   true,
	"processed_date": true,
	"amount":         true,
	"status":         true,
	"payment_method": true,
}
