package models

import (
	"encoding/json"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
)

// AggregateModel provides common persistence fields for aggregate roots.
// Version backs optimistic locking.
type AggregateModel struct {
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// ToDomainAggregateRoot converts AggregateModel to a domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		Timestamps: shared.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// encodeJSONMap serializes a details map for a jsonb column
func encodeJSONMap(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// decodeJSONMap parses a jsonb column into a details map
func decodeJSONMap(s string) map[string]any {
	out := map[string]any{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// AllModels lists every affiliate table model in dependency order
func AllModels() []any {
	return []any{
		&PartnerProfileModel{},
		&ProductModel{},
		&ReferralModel{},
		&ReferralTimelineModel{},
		&EarningModel{},
		&PayoutModel{},
		&PayoutReferralModel{},
		&PayoutTimelineModel{},
		&PayoutSettingModel{},
	}
}
