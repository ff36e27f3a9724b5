package referral

import (
	"context"
	"time"
)

// TimelineEntry is an append-only audit record of a referral's status history
type TimelineEntry struct {
	ID         int64
	ReferralID int64
	Status     Status
	Timestamp  time.Time
	Note       string
	CreatedBy  string
}

// TimelineRepository persists and reads referral timeline entries.
// Entries are never updated or deleted.
type TimelineRepository interface {
	Append(ctx context.Context, entries ...*TimelineEntry) error
	FindByReferralID(ctx context.Context, referralID int64) ([]*TimelineEntry, error)
}
