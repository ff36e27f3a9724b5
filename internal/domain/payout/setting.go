package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Schedule is how often a partner wants to be paid
type Schedule string

const (
	ScheduleManual    Schedule = "manual"
	ScheduleWeekly    Schedule = "weekly"
	ScheduleBiweekly  Schedule = "biweekly"
	ScheduleMonthly   Schedule = "monthly"
	ScheduleQuarterly Schedule = "quarterly"
)

// AllSchedules lists the supported schedules in display order
var AllSchedules = []Schedule{ScheduleManual, ScheduleWeekly, ScheduleBiweekly, ScheduleMonthly, ScheduleQuarterly}

// IsValid checks if the schedule is valid
func (s Schedule) IsValid() bool {
	switch s {
	case ScheduleManual, ScheduleWeekly, ScheduleBiweekly, ScheduleMonthly, ScheduleQuarterly:
		return true
	}
	return false
}

// DefaultMinimumPayout is used when a partner has not saved settings
var DefaultMinimumPayout = decimal.NewFromInt(50)

// Setting is a partner's payout preferences. One per partner.
type Setting struct {
	ID                  int64
	PartnerID           int64
	PaymentMethod       PaymentMethod
	PaymentDetails      map[string]any
	MinimumPayoutAmount decimal.Decimal
	AutoPayout          bool
	Schedule            Schedule
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DefaultSetting returns the unsaved defaults for a partner
func DefaultSetting(partnerID int64) *Setting {
	return &Setting{
		PartnerID:           partnerID,
		PaymentMethod:       MethodBank,
		PaymentDetails:      map[string]any{},
		MinimumPayoutAmount: DefaultMinimumPayout,
		AutoPayout:          false,
		Schedule:            ScheduleMonthly,
	}
}

// IsPersisted returns true once the setting has been saved
func (s *Setting) IsPersisted() bool {
	return s.ID > 0
}

// SettingUpdate carries the fields a partner may change. Nil fields keep their value.
type SettingUpdate struct {
	PaymentMethod       *string
	PaymentDetails      map[string]any
	MinimumPayoutAmount *decimal.Decimal
	AutoPayout          *bool
	Schedule            *string
}

// Apply validates and applies an update. Payment details are always re-validated
// against the resulting method so a method switch cannot keep stale details.
func (s *Setting) Apply(u SettingUpdate) error {
	method := s.PaymentMethod
	if u.PaymentMethod != nil {
		m, err := ParsePaymentMethod(*u.PaymentMethod)
		if err != nil {
			return err
		}
		method = m
	}

	details := s.PaymentDetails
	if u.PaymentDetails != nil {
		details = u.PaymentDetails
	}
	normalized, err := ValidateDetails(method, details)
	if err != nil {
		return err
	}

	minimum := s.MinimumPayoutAmount
	if u.MinimumPayoutAmount != nil {
		if u.MinimumPayoutAmount.IsNegative() {
			return shared.NewValidationError("Minimum payout amount cannot be negative",
				shared.FieldError{Field: "minimum_payout_amount", Message: "Ensure this value is greater than or equal to 0."})
		}
		minimum = shared.RoundMoney(*u.MinimumPayoutAmount)
	}

	schedule := s.Schedule
	if u.Schedule != nil {
		schedule = Schedule(*u.Schedule)
		if !schedule.IsValid() {
			return shared.NewValidationError(fmt.Sprintf("\"%s\" is not a valid choice.", *u.Schedule),
				shared.FieldError{Field: "payout_schedule", Message: "Not a valid choice."})
		}
	}

	s.PaymentMethod = method
	s.PaymentDetails = normalized
	s.MinimumPayoutAmount = minimum
	s.Schedule = schedule
	if u.AutoPayout != nil {
		s.AutoPayout = *u.AutoPayout
	}
	s.UpdatedAt = time.Now()
	return nil
}

// SettingRepository persists payout settings
type SettingRepository interface {
	// FindByPartnerID returns the partner's saved setting or ErrNotFound
	FindByPartnerID(ctx context.Context, partnerID int64) (*Setting, error)

	// Save inserts or updates the partner's setting
	Save(ctx context.Context, s *Setting) error
}
