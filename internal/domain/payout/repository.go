package payout

import (
	"context"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows payout listings
type Filter struct {
	shared.Filter
	PartnerID     *int64
	Status        Status
	PaymentMethod PaymentMethod
	From          *time.Time
	To            *time.Time
}

// Summary totals payouts by status
type Summary struct {
	TotalPayouts     int64           `json:"total_payouts"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	ProcessingAmount decimal.Decimal `json:"processing_amount"`
	CompletedAmount  decimal.Decimal `json:"completed_amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
}

// Repository defines the interface for payout persistence.
// Create and Update also write pending timeline entries; Create writes the payout referrals.
type Repository interface {
	// FindByID finds a payout with its payout referrals
	FindByID(ctx context.Context, id string) (*Payout, error)

	// FindByIDForUpdate finds a payout and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id string) (*Payout, error)

	// List returns payouts matching the filter and the total count
	List(ctx context.Context, filter Filter) ([]*Payout, int64, error)

	// Summary totals payouts matching the filter
	Summary(ctx context.Context, filter Filter) (*Summary, error)

	// Timeline returns a payout's timeline, oldest first
	Timeline(ctx context.Context, id string) ([]*TimelineEntry, error)

	// Create inserts a new payout
	Create(ctx context.Context, p *Payout) error

	// Update saves a payout using optimistic locking on Version
	Update(ctx context.Context, p *Payout) error
}
