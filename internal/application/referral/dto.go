package referral

import (
	"time"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/shopspring/decimal"
)

// ==================== Referral DTOs ====================

// SubmitReferralRequest represents a partner's referral submission
type SubmitReferralRequest struct {
	ClientName          string           `json:"client_name" binding:"required,max=200"`
	ClientEmail         string           `json:"client_email" binding:"required,email"`
	ClientPhone         string           `json:"client_phone" binding:"required,max=30"`
	ClientCompany       string           `json:"client_company" binding:"omitempty,max=200"`
	ReferralCode        string           `json:"referral_code" binding:"omitempty,max=20"`
	ProductID           *int64           `json:"product"`
	ProductName         string           `json:"product_name" binding:"omitempty,max=200"`
	BudgetRange         string           `json:"budget_range" binding:"omitempty,max=100"`
	Notes               string           `json:"notes"`
	Timeline            string           `json:"timeline"`
	PotentialCommission *decimal.Decimal `json:"potential_commission" binding:"omitempty,gte=0"`
}

// UpdateReferralStatusRequest represents a status change
type UpdateReferralStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddTimelineNoteRequest represents a free-text note on a referral
type AddTimelineNoteRequest struct {
	Note string `json:"note"`
}

// ReferralListFilter represents filter options for referral listings
type ReferralListFilter struct {
	Search        string           `form:"search"`
	Status        string           `form:"status"`
	ProductID     *int64           `form:"product"`
	PartnerID     *int64           `form:"partner_id"`
	DateRange     string           `form:"date_range" binding:"omitempty,oneof=today thisWeek thisMonth last3Months"`
	MinCommission *decimal.Decimal `form:"min_commission"`
	MaxCommission *decimal.Decimal `form:"max_commission"`
	Page          int              `form:"page" binding:"omitempty,min=1"`
	PageSize      int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string           `form:"order_by"`
	OrderDir      string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReferralResponse represents a referral in API responses
type ReferralResponse struct {
	ID                         int64            `json:"id"`
	UserID                     string           `json:"user_id"`
	PartnerID                  *int64           `json:"partner_id"`
	ReferralCode               string           `json:"referral_code"`
	ClientName                 string           `json:"client_name"`
	ClientEmail                string           `json:"client_email"`
	ClientPhone                string           `json:"client_phone"`
	ClientCompany              string           `json:"client_company,omitempty"`
	ProductID                  *int64           `json:"product"`
	ProductName                string           `json:"product_name,omitempty"`
	BudgetRange                string           `json:"budget_range,omitempty"`
	Notes                      string           `json:"notes,omitempty"`
	Status                     string           `json:"status"`
	PrevStatus                 string           `json:"prev_status,omitempty"`
	Timeline                   string           `json:"timeline,omitempty"`
	ExpectedImplementationDate *time.Time       `json:"expected_implementation_date"`
	PotentialCommission        decimal.Decimal  `json:"potential_commission"`
	ActualCommission           *decimal.Decimal `json:"actual_commission"`
	SubmittedAt                time.Time        `json:"submitted_at"`
	UpdatedAt                  time.Time        `json:"updated_at"`
	UpdatedBy                  string           `json:"updated_by,omitempty"`
}

// ToReferralResponse converts a domain referral to a response
func ToReferralResponse(r *referral.Referral) ReferralResponse {
	resp := ReferralResponse{
		ID:                         r.ID,
		UserID:                     r.UserID,
		PartnerID:                  r.PartnerID,
		ReferralCode:               r.ReferralCode,
		ClientName:                 r.ClientName,
		ClientEmail:                r.ClientEmail,
		ClientPhone:                r.ClientPhone,
		ClientCompany:              r.ClientCompany,
		ProductID:                  r.ProductID,
		ProductName:                r.ProductName,
		BudgetRange:                r.BudgetRange,
		Notes:                      r.Notes,
		Status:                     string(r.Status),
		PrevStatus:                 string(r.PrevStatus),
		Timeline:                   string(r.Timeline),
		ExpectedImplementationDate: r.ExpectedImplementationDate,
		PotentialCommission:        r.PotentialCommission.Round(2),
		SubmittedAt:                r.SubmittedAt,
		UpdatedAt:                  r.UpdatedAt,
		UpdatedBy:                  r.UpdatedBy,
	}
	if r.ActualCommission != nil {
		actual := r.ActualCommission.Round(2)
		resp.ActualCommission = &actual
	}
	return resp
}

// ToReferralResponses converts a slice of referrals
func ToReferralResponses(referrals []*referral.Referral) []ReferralResponse {
	responses := make([]ReferralResponse, len(referrals))
	for i, r := range referrals {
		responses[i] = ToReferralResponse(r)
	}
	return responses
}

// TimelineEntryResponse represents one referral timeline entry
type TimelineEntryResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	CreatedBy string    `json:"created_by"`
}

// ToTimelineEntryResponse converts a timeline entry
func ToTimelineEntryResponse(e *referral.TimelineEntry) TimelineEntryResponse {
	return TimelineEntryResponse{
		ID:        e.ID,
		Status:    string(e.Status),
		Timestamp: e.Timestamp,
		Note:      e.Note,
		CreatedBy: e.CreatedBy,
	}
}

// ToTimelineEntryResponses converts a slice of timeline entries
func ToTimelineEntryResponses(entries []*referral.TimelineEntry) []TimelineEntryResponse {
	responses := make([]TimelineEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToTimelineEntryResponse(e)
	}
	return responses
}

// StatusChangeResponse is returned by UpdateStatus.
// EarningID is set when the change converted the referral and an earning exists for it.
type StatusChangeResponse struct {
	Referral  ReferralResponse `json:"referral"`
	Changed   bool             `json:"changed"`
	EarningID *int64           `json:"earning_id,omitempty"`
}

// ==================== Product DTOs ====================

// CreateProductRequest represents a staff request to add a product
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Commission  string `json:"commission" binding:"omitempty,max=20"`
	Price       string `json:"price" binding:"omitempty,max=50"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Commission  string `json:"commission"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *referral.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Commission:  p.Commission,
		Price:       p.Price,
		Active:      p.Active,
	}
}
