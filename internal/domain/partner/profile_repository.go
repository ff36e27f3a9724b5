package partner

import (
	"context"

	"github.com/affiliate/backend/internal/domain/shared"
)

// ProfileFilter narrows partner profile listings
type ProfileFilter struct {
	shared.Filter
	Status ProfileStatus
}

// ProfileRepository defines the interface for partner profile persistence
type ProfileRepository interface {
	// FindByID finds a profile by its ID
	FindByID(ctx context.Context, id int64) (*Profile, error)

	// FindByUserID finds the profile owned by a user
	FindByUserID(ctx context.Context, userID string) (*Profile, error)

	// FindByReferralCode finds the profile that owns a referral code
	FindByReferralCode(ctx context.Context, code string) (*Profile, error)

	// List returns profiles matching the filter and the total count
	List(ctx context.Context, filter ProfileFilter) ([]*Profile, int64, error)

	// Save creates or updates a profile, assigning the ID on create
	Save(ctx context.Context, profile *Profile) error
}
