package models

import (
	"time"

	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/shopspring/decimal"
)

// PayoutModel is the persistence model for the Payout aggregate.
type PayoutModel struct {
	ID             string               `gorm:"type:varchar(20);primaryKey"`
	PartnerID      int64                `gorm:"not null;index"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status         payout.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod  payout.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentDetails string               `gorm:"type:jsonb"`
	TransactionID  string               `gorm:"type:varchar(100)"`
	Note           string               `gorm:"type:text"`
	ClientNotes    string               `gorm:"type:text"`
	RequestDate    time.Time            `gorm:"not null;index"`
	ProcessedDate  *time.Time
	ProcessedBy    string                `gorm:"type:varchar(64)"`
	Referrals      []PayoutReferralModel `gorm:"foreignKey:PayoutID;references:ID"`
	AggregateModel
}

// TableName returns the table name for GORM
func (PayoutModel) TableName() string {
	return "payouts"
}

// ToDomain converts the persistence model to a domain Payout.
func (m *PayoutModel) ToDomain() *payout.Payout {
	p := &payout.Payout{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		PartnerID:         m.PartnerID,
		Amount:            m.Amount,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		PaymentDetails:    decodeJSONMap(m.PaymentDetails),
		TransactionID:     m.TransactionID,
		Note:              m.Note,
		ClientNotes:       m.ClientNotes,
		RequestDate:       m.RequestDate,
		ProcessedDate:     m.ProcessedDate,
		ProcessedBy:       m.ProcessedBy,
	}
	for i := range m.Referrals {
		p.Referrals = append(p.Referrals, m.Referrals[i].ToDomain())
	}
	return p
}

// PayoutModelFromDomain creates a persistence model from a domain Payout.
// Payout referrals are written separately.
func PayoutModelFromDomain(p *payout.Payout) *PayoutModel {
	m := &PayoutModel{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount,
		Status:         p.Status,
		PaymentMethod:  p.PaymentMethod,
		PaymentDetails: encodeJSONMap(p.PaymentDetails),
		TransactionID:  p.TransactionID,
		Note:           p.Note,
		ClientNotes:    p.ClientNotes,
		RequestDate:    p.RequestDate,
		ProcessedDate:  p.ProcessedDate,
		ProcessedBy:    p.ProcessedBy,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// PayoutReferralModel records the amount of a payout attributed to one referral.
type PayoutReferralModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	PayoutID   string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_payout_referral,priority:1"`
	ReferralID int64           `gorm:"not null;uniqueIndex:idx_payout_referral,priority:2"`
	EarningID  int64           `gorm:"not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayoutReferralModel) TableName() string {
	return "payout_referrals"
}

// ToDomain converts the persistence model to a domain PayoutReferral.
func (m *PayoutReferralModel) ToDomain() *payout.PayoutReferral {
	return &payout.PayoutReferral{
		ID:         m.ID,
		PayoutID:   m.PayoutID,
		ReferralID: m.ReferralID,
		EarningID:  m.EarningID,
		Amount:     m.Amount,
		CreatedAt:  m.CreatedAt,
	}
}

// PayoutReferralModelFromDomain creates a persistence model from a domain PayoutReferral.
func PayoutReferralModelFromDomain(pr *payout.PayoutReferral) *PayoutReferralModel {
	return &PayoutReferralModel{
		ID:         pr.ID,
		PayoutID:   pr.PayoutID,
		ReferralID: pr.ReferralID,
		EarningID:  pr.EarningID,
		Amount:     pr.Amount,
		CreatedAt:  pr.CreatedAt,
	}
}

// PayoutTimelineModel is the persistence model for append-only payout timeline entries.
type PayoutTimelineModel struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	PayoutID  string        `gorm:"type:varchar(20);not null;index"`
	Status    payout.Status `gorm:"type:varchar(20);not null"`
	Timestamp time.Time     `gorm:"not null"`
	Note      string        `gorm:"type:text"`
	CreatedBy string        `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (PayoutTimelineModel) TableName() string {
	return "payout_timelines"
}

// ToDomain converts the persistence model to a domain TimelineEntry.
func (m *PayoutTimelineModel) ToDomain() *payout.TimelineEntry {
	return &payout.TimelineEntry{
		ID:        m.ID,
		PayoutID:  m.PayoutID,
		Status:    m.Status,
		Timestamp: m.Timestamp,
		Note:      m.Note,
		CreatedBy: m.CreatedBy,
	}
}

// PayoutTimelineModelFromDomain creates a persistence model from a domain TimelineEntry.
func PayoutTimelineModelFromDomain(e *payout.TimelineEntry) *PayoutTimelineModel {
	return &PayoutTimelineModel{
		PayoutID:  e.PayoutID,
		Status:    e.Status,
		Timestamp: e.Timestamp,
		Note:      e.Note,
		CreatedBy: e.CreatedBy,
	}
}

// PayoutSettingModel is the persistence model for a partner's payout settings.
type PayoutSettingModel struct {
	ID                  int64                `gorm:"primaryKey;autoIncrement"`
	PartnerID           int64                `gorm:"not null;uniqueIndex"`
	PaymentMethod       payout.PaymentMethod `gorm:"type:varchar(20);not null;default:'bank'"`
	PaymentDetails      string               `gorm:"type:jsonb"`
	MinimumPayoutAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:50"`
	AutoPayout          bool                 `gorm:"not null"`
	PayoutSchedule      payout.Schedule      `gorm:"type:varchar(20);not null;default:'monthly'"`
	CreatedAt           time.Time            `gorm:"not null"`
	UpdatedAt           time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayoutSettingModel) TableName() string {
	return "payout_settings"
}

// ToDomain converts the persistence model to a domain Setting.
func (m *PayoutSettingModel) ToDomain() *payout.Setting {
	return &payout.Setting{
		ID:                  m.ID,
		PartnerID:           m.PartnerID,
		PaymentMethod:       m.PaymentMethod,
		PaymentDetails:      decodeJSONMap(m.PaymentDetails),
		MinimumPayoutAmount: m.MinimumPayoutAmount,
		AutoPayout:          m.AutoPayout,
		Schedule:            m.PayoutSchedule,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// PayoutSettingModelFromDomain creates a persistence model from a domain Setting.
func PayoutSettingModelFromDomain(s *payout.Setting) *PayoutSettingModel {
	return &PayoutSettingModel{
		ID:                  s.ID,
		PartnerID:           s.PartnerID,
		PaymentMethod:       s.PaymentMethod,
		PaymentDetails:      encodeJSONMap(s.PaymentDetails),
		MinimumPayoutAmount: s.MinimumPayoutAmount,
		AutoPayout:          s.AutoPayout,
		PayoutSchedule:      s.Schedule,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
