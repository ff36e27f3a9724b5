package earning

import (
	"strconv"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeEarning is the aggregate type for earning events
const AggregateTypeEarning = "Earning"

// Event type constants
const (
	EventTypeEarningCreated       = "earning.created"
	EventTypeEarningStatusChanged = "earning.status_changed"
)

// EarningCreatedEvent is published when an earning is recorded
type EarningCreatedEvent struct {
	shared.BaseDomainEvent
	Source     Source          `json:"source"`
	Status     Status          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	ReferralID *int64          `json:"referral_id,omitempty"`
}

// NewEarningCreatedEvent creates a new EarningCreatedEvent
func NewEarningCreatedEvent(e *Earning) *EarningCreatedEvent {
	return &EarningCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEarningCreated, AggregateTypeEarning, strconv.FormatInt(e.ID, 10), e.PartnerID),
		Source:          e.Source,
		Status:          e.Status,
		Amount:          e.Amount,
		ReferralID:      e.ReferralID,
	}
}

// EarningStatusChangedEvent is published on every earning status transition
type EarningStatusChangedEvent struct {
	shared.BaseDomainEvent
	From     Status          `json:"from"`
	To       Status          `json:"to"`
	Amount   decimal.Decimal `json:"amount"`
	PayoutID *string         `json:"payout_id,omitempty"`
}

// NewEarningStatusChangedEvent creates a new EarningStatusChangedEvent
func NewEarningStatusChangedEvent(e *Earning, from Status) *EarningStatusChangedEvent {
	return &EarningStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEarningStatusChanged, AggregateTypeEarning, strconv.FormatInt(e.ID, 10), e.PartnerID),
		From:            from,
		To:              e.Status,
		Amount:          e.Amount,
		PayoutID:        e.PayoutID,
	}
}
