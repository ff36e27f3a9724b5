package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProfileStatus represents the status of a partner profile
type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusInactive  ProfileStatus = "inactive"
	ProfileStatusSuspended ProfileStatus = "suspended"
)

// IsValid checks if the status is valid
func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusActive, ProfileStatusInactive, ProfileStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation
func (s ProfileStatus) String() string {
	return string(s)
}

// ReferralCodePrefix prefixes every generated partner referral code
const ReferralCodePrefix = "REF-"

// Profile is the partner account that referrals, earnings and payouts belong to.
// A user owns at most one profile.
type Profile struct {
	shared.BaseAggregateRoot
	ID           int64
	UserID       string
	Name         string
	Email        string
	Phone        string
	CompanyName  string
	Website      string
	ReferralCode string
	Status       ProfileStatus
}

// NewProfile creates a partner profile for a user and assigns a fresh referral code
func NewProfile(userID, name, email string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, shared.NewValidationError("User is required",
			shared.FieldError{Field: "user_id", Message: "This field is required."})
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Partner name is required",
			shared.FieldError{Field: "name", Message: "This field is required."})
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Partner name cannot exceed 200 characters",
			shared.FieldError{Field: "name", Message: "Ensure this field has no more than 200 characters."})
	}

	return &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Name:              strings.TrimSpace(name),
		Email:             strings.TrimSpace(email),
		ReferralCode:      GenerateReferralCode(),
		Status:            ProfileStatusActive,
	}, nil
}

// GenerateReferralCode returns REF- followed by 8 uppercase hex characters
func GenerateReferralCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ReferralCodePrefix + strings.ToUpper(hex[:8])
}

// SetContact updates optional contact details
func (p *Profile) SetContact(phone, companyName, website string) {
	p.Phone = strings.TrimSpace(phone)
	p.CompanyName = strings.TrimSpace(companyName)
	p.Website = strings.TrimSpace(website)
	p.UpdatedAt = time.Now()
}

// ChangeStatus moves the profile to a new status
func (p *Profile) ChangeStatus(status ProfileStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid partner status: %s", status),
			shared.FieldError{Field: "status", Message: "Not a valid choice."})
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the partner can submit referrals and request payouts
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}
