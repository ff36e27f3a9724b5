package payout

import (
	"time"

	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/shopspring/decimal"
)

// ==================== Payout DTOs ====================

// CreatePayoutRequest asks for a payout over a set of converted referrals.
// Amount is what the caller expects; the payout is always for what was actually included.
type CreatePayoutRequest struct {
	PartnerID      *int64           `json:"partner"`
	Amount         *decimal.Decimal `json:"amount"`
	PaymentMethod  string           `json:"payment_method"`
	PaymentDetails map[string]any   `json:"payment_details"`
	ReferralIDs    []int64          `json:"referrals" binding:"required,min=1"`
	ClientNotes    string           `json:"client_notes"`

	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// CompletePayoutRequest carries the gateway transaction reference
type CompletePayoutRequest struct {
	TransactionID string `json:"transaction_id"`
}

// FailPayoutRequest carries the failure message
type FailPayoutRequest struct {
	ErrorMessage string `json:"error_message"`
}

// CancelPayoutRequest carries the cancellation reason
type CancelPayoutRequest struct {
	Reason string `json:"reason"`
}

// PayoutListFilter represents filter options for payout listings
type PayoutListFilter struct {
	PartnerID     *int64     `form:"partner_id"`
	Status        string     `form:"status"`
	PaymentMethod string     `form:"payment_method"`
	From          *time.Time `form:"date_from" time_format:"2006-01-02"`
	To            *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PayoutReferralResponse is one included referral
type PayoutReferralResponse struct {
	ID         int64           `json:"id"`
	ReferralID int64           `json:"referral"`
	EarningID  int64           `json:"earning"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PayoutResponse represents a payout in API responses
type PayoutResponse struct {
	ID              string                   `json:"id"`
	PartnerID       int64                    `json:"partner"`
	Amount          decimal.Decimal          `json:"amount"`
	RequestedAmount *decimal.Decimal         `json:"requested_amount,omitempty"`
	Status          string                   `json:"status"`
	PaymentMethod   string                   `json:"payment_method"`
	PaymentDetails  map[string]any           `json:"payment_details"`
	TransactionID   string                   `json:"transaction_id,omitempty"`
	Note            string                   `json:"note,omitempty"`
	ClientNotes     string                   `json:"client_notes,omitempty"`
	RequestDate     time.Time                `json:"request_date"`
	ProcessedDate   *time.Time               `json:"processed_date"`
	ProcessedBy     string                   `json:"processed_by,omitempty"`
	Referrals       []PayoutReferralResponse `json:"referrals,omitempty"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// TimelineEntryResponse is one payout audit record
type TimelineEntryResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// ToPayoutResponse converts a domain payout to a response
func ToPayoutResponse(p *payout.Payout) PayoutResponse {
	resp := PayoutResponse{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount.Round(2),
		Status:         string(p.Status),
		PaymentMethod:  string(p.PaymentMethod),
		PaymentDetails: p.PaymentDetails,
		TransactionID:  p.TransactionID,
		Note:           p.Note,
		ClientNotes:    p.ClientNotes,
		RequestDate:    p.RequestDate,
		ProcessedDate:  p.ProcessedDate,
		ProcessedBy:    p.ProcessedBy,
		UpdatedAt:      p.UpdatedAt,
	}
	if len(p.Referrals) > 0 {
		resp.Referrals = make([]PayoutReferralResponse, len(p.Referrals))
		for i, pr := range p.Referrals {
			resp.Referrals[i] = PayoutReferralResponse{
				ID:         pr.ID,
				ReferralID: pr.ReferralID,
				EarningID:  pr.EarningID,
				Amount:     pr.Amount.Round(2),
				CreatedAt:  pr.CreatedAt,
			}
		}
	}
	return resp
}

// ToPayoutResponses converts a slice of domain payouts
func ToPayoutResponses(payouts []*payout.Payout) []PayoutResponse {
	responses := make([]PayoutResponse, len(payouts))
	for i, p := range payouts {
		responses[i] = ToPayoutResponse(p)
	}
	return responses
}

// ToTimelineEntryResponses converts payout timeline entries
func ToTimelineEntryResponses(entries []*payout.TimelineEntry) []TimelineEntryResponse {
	responses := make([]TimelineEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = TimelineEntryResponse{
			ID:        e.ID,
			Status:    string(e.Status),
			Timestamp: e.Timestamp,
			Note:      e.Note,
			CreatedBy: e.CreatedBy,
		}
	}
	return responses
}

// ==================== Settings DTOs ====================

// UpdateSettingRequest changes a partner's payout settings. Omitted fields keep their value.
type UpdateSettingRequest struct {
	PaymentMethod       *string          `json:"payment_method"`
	PaymentDetails      map[string]any   `json:"payment_details"`
	MinimumPayoutAmount *decimal.Decimal `json:"minimum_payout_amount" binding:"omitempty,gte=0"`
	AutoPayout          *bool            `json:"auto_payout"`
	PayoutSchedule      *string          `json:"payout_schedule"`
}

// SettingResponse represents payout settings in API responses
type SettingResponse struct {
	PartnerID           int64           `json:"partner"`
	PaymentMethod       string          `json:"payment_method"`
	PaymentDetails      map[string]any  `json:"payment_details"`
	MinimumPayoutAmount decimal.Decimal `json:"minimum_payout_amount"`
	AutoPayout          bool            `json:"auto_payout"`
	PayoutSchedule      string          `json:"payout_schedule"`
	Saved               bool            `json:"saved"`
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
}

// PaymentMethodInfo describes the detail fields a payment method needs
type PaymentMethodInfo struct {
	Method            string   `json:"method"`
	RequiredFields    []string `json:"required_fields"`
	RecommendedFields []string `json:"recommended_fields,omitempty"`
}

// ToSettingResponse converts a domain setting to a response
func ToSettingResponse(s *payout.Setting) SettingResponse {
	details := s.PaymentDetails
	if details == nil {
		details = map[string]any{}
	}
	resp := SettingResponse{
		PartnerID:           s.PartnerID,
		PaymentMethod:       string(s.PaymentMethod),
		PaymentDetails:      details,
		MinimumPayoutAmount: s.MinimumPayoutAmount.Round(2),
		AutoPayout:          s.AutoPayout,
		PayoutSchedule:      string(s.Schedule),
		Saved:               s.IsPersisted(),
	}
	if s.IsPersisted() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
