package referral

import (
	"strconv"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeReferral is the aggregate type for referral events
const AggregateTypeReferral = "Referral"

// Event type constants
const (
	EventTypeReferralSubmitted     = "referral.submitted"
	EventTypeReferralStatusChanged = "referral.status_changed"
	EventTypeReferralConverted     = "referral.converted"
)

func partnerOf(r *Referral) int64 {
	if r.PartnerID == nil {
		return 0
	}
	return *r.PartnerID
}

// ReferralSubmittedEvent is published when a partner submits a referral
type ReferralSubmittedEvent struct {
	shared.BaseDomainEvent
	ReferralCode        string          `json:"referral_code"`
	ProductName         string          `json:"product_name,omitempty"`
	PotentialCommission decimal.Decimal `json:"potential_commission"`
}

// NewReferralSubmittedEvent creates a new ReferralSubmittedEvent
func NewReferralSubmittedEvent(r *Referral) *ReferralSubmittedEvent {
	return &ReferralSubmittedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeReferralSubmitted, AggregateTypeReferral, strconv.FormatInt(r.ID, 10), partnerOf(r)),
		ReferralCode:        r.ReferralCode,
		ProductName:         r.ProductName,
		PotentialCommission: r.PotentialCommission,
	}
}

// ReferralStatusChangedEvent is published on every referral status transition
type ReferralStatusChangedEvent struct {
	shared.BaseDomainEvent
	From Status `json:"from"`
	To   Status `json:"to"`
}

// NewReferralStatusChangedEvent creates a new ReferralStatusChangedEvent
func NewReferralStatusChangedEvent(r *Referral, from Status) *ReferralStatusChangedEvent {
	return &ReferralStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReferralStatusChanged, AggregateTypeReferral, strconv.FormatInt(r.ID, 10), partnerOf(r)),
		From:            from,
		To:              r.Status,
	}
}

// ReferralConvertedEvent is published when a referral reaches the converted status
type ReferralConvertedEvent struct {
	shared.BaseDomainEvent
	ActualCommission decimal.Decimal `json:"actual_commission"`
}

// NewReferralConvertedEvent creates a new ReferralConvertedEvent
func NewReferralConvertedEvent(r *Referral) *ReferralConvertedEvent {
	return &ReferralConvertedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReferralConverted, AggregateTypeReferral, strconv.FormatInt(r.ID, 10), partnerOf(r)),
		ActualCommission: r.EarningAmount(),
	}
}
