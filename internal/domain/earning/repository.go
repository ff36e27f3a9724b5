package earning

import (
	"context"
	"sort"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PayoutState filters earnings by whether they have been paid out
type PayoutState string

const (
	PayoutStatePaid   PayoutState = "paid"
	PayoutStateUnpaid PayoutState = "unpaid"
)

// Filter narrows earning listings
type Filter struct {
	shared.Filter
	PartnerID   *int64
	Status      Status
	Source      Source
	From        *time.Time
	To          *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	PayoutState PayoutState
}

// Summary totals a partner's earnings by bucket
type Summary struct {
	Total      decimal.Decimal `json:"total"`
	Available  decimal.Decimal `json:"available"`
	Pending    decimal.Decimal `json:"pending"`
	Processing decimal.Decimal `json:"processing"`
	Paid       decimal.Decimal `json:"paid"`
}

// Period is the grouping granularity for earning stats
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// IsValid checks if the period is valid
func (p Period) IsValid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

// Truncate returns the start of the period containing t.
// Weeks start on Monday.
func (p Period) Truncate(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// StatPoint is one bucket of grouped earnings
type StatPoint struct {
	PeriodStart time.Time       `json:"period_start"`
	Count       int64           `json:"count"`
	Amount      decimal.Decimal `json:"amount"`
}

// Repository defines the interface for earning persistence
type Repository interface {
	// FindByID finds an earning by its ID
	FindByID(ctx context.Context, id int64) (*Earning, error)

	// FindByIDForUpdate finds an earning and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id int64) (*Earning, error)

	// FindByReferralID returns the earning created for a referral, or ErrNotFound
	FindByReferralID(ctx context.Context, referralID int64) (*Earning, error)

	// FindByPayoutID returns earnings linked to a payout
	FindByPayoutID(ctx context.Context, payoutID string) ([]*Earning, error)

	// FindByReferralIDsForUpdate returns the partner's earnings for the given referrals, row-locked
	FindByReferralIDsForUpdate(ctx context.Context, partnerID int64, referralIDs []int64) ([]*Earning, error)

	// ClaimForPayout atomically moves an available earning to processing and links the payout.
	// Returns false if the earning was no longer available.
	ClaimForPayout(ctx context.Context, id int64, payoutID string) (bool, error)

	// List returns earnings matching the filter and the total count
	List(ctx context.Context, filter Filter) ([]*Earning, int64, error)

	// Summary totals earnings matching the filter by bucket
	Summary(ctx context.Context, filter Filter) (*Summary, error)

	// ListForStats returns earnings dated within [from, to) for grouping
	ListForStats(ctx context.Context, partnerID *int64, from, to time.Time) ([]*Earning, error)

	// Create inserts a new earning and assigns its ID
	Create(ctx context.Context, e *Earning) error

	// Update saves an earning using optimistic locking on Version
	Update(ctx context.Context, e *Earning) error
}

// GroupByPeriod buckets earnings into period totals in ascending order
func GroupByPeriod(earnings []*Earning, period Period) []StatPoint {
	index := make(map[time.Time]int)
	points := make([]StatPoint, 0)
	for _, e := range earnings {
		start := period.Truncate(e.Date)
		i, ok := index[start]
		if !ok {
			i = len(points)
			index[start] = i
			points = append(points, StatPoint{PeriodStart: start, Amount: decimal.Zero})
		}
		points[i].Count++
		points[i].Amount = points[i].Amount.Add(e.Amount)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].PeriodStart.Before(points[j].PeriodStart)
	})
	return points
}
