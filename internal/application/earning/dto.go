package earning

import (
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/shopspring/decimal"
)

// CreateEarningRequest represents a staff-entered bonus or promotion
type CreateEarningRequest struct {
	PartnerID int64           `json:"partner_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Source    string          `json:"source" binding:"required,oneof=bonus promotion other"`
	Notes     string          `json:"notes"`
	Date      *time.Time      `json:"date"`
}

// ReasonRequest carries the optional reason for reject and cancel
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// EarningListFilter represents filter options for earning listings
type EarningListFilter struct {
	PartnerID    *int64           `form:"partner_id"`
	Status       string           `form:"status"`
	Source       string           `form:"source"`
	From         *time.Time       `form:"date_from" time_format:"2006-01-02"`
	To           *time.Time       `form:"date_to" time_format:"2006-01-02"`
	MinAmount    *decimal.Decimal `form:"min_amount"`
	MaxAmount    *decimal.Decimal `form:"max_amount"`
	PayoutStatus string           `form:"payout_status" binding:"omitempty,oneof=paid unpaid"`
	Page         int              `form:"page" binding:"omitempty,min=1"`
	PageSize     int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string           `form:"order_by"`
	OrderDir     string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatsRequest selects the grouping for earning stats
type StatsRequest struct {
	PartnerID *int64 `form:"partner_id"`
	Period    string `form:"period" binding:"omitempty,oneof=day week month"`
}

// EarningResponse represents an earning in API responses
type EarningResponse struct {
	ID         int64           `json:"id"`
	PartnerID  int64           `json:"partner_id"`
	ReferralID *int64          `json:"referral"`
	PayoutID   *string         `json:"payout"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Source     string          `json:"source"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	ApprovedBy *string         `json:"approved_by,omitempty"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	RejectedBy *string         `json:"rejected_by,omitempty"`
	RejectedAt *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StatsResponse is the grouped earning history
type StatsResponse struct {
	Period string              `json:"period"`
	From   time.Time           `json:"from"`
	To     time.Time           `json:"to"`
	Points []earning.StatPoint `json:"points"`
	Total  decimal.Decimal     `json:"total"`
}

// ToEarningResponse converts a domain earning to a response
func ToEarningResponse(e *earning.Earning) EarningResponse {
	return EarningResponse{
		ID:         e.ID,
		PartnerID:  e.PartnerID,
		ReferralID: e.ReferralID,
		PayoutID:   e.PayoutID,
		Amount:     e.Amount.Round(2),
		Date:       e.Date,
		Source:     string(e.Source),
		Status:     string(e.Status),
		Notes:      e.Notes,
		ApprovedBy: e.ApprovedBy,
		ApprovedAt: e.ApprovedAt,
		RejectedBy: e.RejectedBy,
		RejectedAt: e.RejectedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ToEarningResponses converts a slice of domain earnings
func ToEarningResponses(earnings []*earning.Earning) []EarningResponse {
	responses := make([]EarningResponse, len(earnings))
	for i, e := range earnings {
		responses[i] = ToEarningResponse(e)
	}
	return responses
}
