package payout

import (
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePayout is the aggregate type for payout events
const AggregateTypePayout = "Payout"

// Event type constants
const (
	EventTypePayoutCreated       = "payout.created"
	EventTypePayoutStatusChanged = "payout.status_changed"
)

// PayoutCreatedEvent is published when a payout is requested
type PayoutCreatedEvent struct {
	shared.BaseDomainEvent
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ReferralCount int             `json:"referral_count"`
}

// NewPayoutCreatedEvent creates a new PayoutCreatedEvent
func NewPayoutCreatedEvent(p *Payout) *PayoutCreatedEvent {
	return &PayoutCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutCreated, AggregateTypePayout, p.ID, p.PartnerID),
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
		ReferralCount:   len(p.Referrals),
	}
}

// PayoutStatusChangedEvent is published on every payout status transition
type PayoutStatusChangedEvent struct {
	shared.BaseDomainEvent
	From          Status          `json:"from"`
	To            Status          `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// NewPayoutStatusChangedEvent creates a new PayoutStatusChangedEvent
func NewPayoutStatusChangedEvent(p *Payout, from Status) *PayoutStatusChangedEvent {
	return &PayoutStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutStatusChanged, AggregateTypePayout, p.ID, p.PartnerID),
		From:            from,
		To:              p.Status,
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
		TransactionID:   p.TransactionID,
	}
}
