package shared

import (
	"time"
)

// Timestamps holds the audit timestamps shared by all entities
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimestamps creates timestamps set to now
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the last-modified timestamp
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}

// GetCreatedAt returns the creation timestamp
func (t *Timestamps) GetCreatedAt() time.Time {
	return t.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (t *Timestamps) GetUpdatedAt() time.Time {
	return t.UpdatedAt
}
