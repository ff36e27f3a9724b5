package referral

import (
	"context"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows referral listings
type Filter struct {
	shared.Filter
	PartnerID     *int64
	UserID        string
	Status        Status
	ProductID     *int64
	SubmittedFrom *time.Time
	MinCommission *decimal.Decimal
	MaxCommission *decimal.Decimal
}

// Stats aggregates referral counts and commission totals
type Stats struct {
	Total             int64            `json:"total"`
	ByStatus          map[Status]int64 `json:"by_status"`
	TotalPotential    decimal.Decimal  `json:"total_potential_commission"`
	TotalActual       decimal.Decimal  `json:"total_actual_commission"`
	ConversionRatePct decimal.Decimal  `json:"conversion_rate"`
}

// Repository defines the interface for referral persistence.
// Create and Update also write the referral's pending timeline entries.
type Repository interface {
	// FindByID finds a referral by its ID
	FindByID(ctx context.Context, id int64) (*Referral, error)

	// FindByIDForUpdate finds a referral and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id int64) (*Referral, error)

	// FindConvertedByIDs returns the converted referrals among ids owned by partnerID
	FindConvertedByIDs(ctx context.Context, partnerID int64, ids []int64) ([]*Referral, error)

	// List returns referrals matching the filter and the total count
	List(ctx context.Context, filter Filter) ([]*Referral, int64, error)

	// Stats aggregates referrals matching the filter
	Stats(ctx context.Context, filter Filter) (*Stats, error)

	// Create inserts a new referral and assigns its ID
	Create(ctx context.Context, r *Referral) error

	// Update saves a referral using optimistic locking on Version
	Update(ctx context.Context, r *Referral) error
}
