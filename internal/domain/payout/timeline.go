package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutReferral records how much of a payout is attributable to one referral
type PayoutReferral struct {
	ID         int64
	PayoutID   string
	ReferralID int64
	EarningID  int64
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// TimelineEntry is an append-only audit record of a payout status change
type TimelineEntry struct {
	ID        int64
	PayoutID  string
	Status    Status
	Timestamp time.Time
	Note      string
	CreatedBy string
}
