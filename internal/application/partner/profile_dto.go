package partner

import (
	"time"

	"github.com/affiliate/backend/internal/domain/partner"
)

// RegisterPartnerRequest represents a request to create the caller's partner profile
type RegisterPartnerRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
	CompanyName string `json:"company_name" binding:"omitempty,max=200"`
	Website     string `json:"website" binding:"omitempty,url"`
}

// UpdatePartnerStatusRequest represents a staff request to change a partner's status
type UpdatePartnerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// PartnerListFilter represents filter options for the partner list
type PartnerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartnerResponse represents a partner profile in API responses
type PartnerResponse struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	Website      string    `json:"website,omitempty"`
	ReferralCode string    `json:"referral_code"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToPartnerResponse converts a domain profile to a response
func ToPartnerResponse(p *partner.Profile) PartnerResponse {
	return PartnerResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		CompanyName:  p.CompanyName,
		Website:      p.Website,
		ReferralCode: p.ReferralCode,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToPartnerResponses converts a slice of profiles
func ToPartnerResponses(profiles []*partner.Profile) []PartnerResponse {
	responses := make([]PartnerResponse, len(profiles))
	for i, p := range profiles {
		responses[i] = ToPartnerResponse(p)
	}
	return responses
}
