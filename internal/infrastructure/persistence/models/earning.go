package models

import (
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/shopspring/decimal"
)

// EarningModel is the persistence model for the Earning aggregate.
// ReferralID is unique so a referral can back at most one earning.
type EarningModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	PartnerID  int64           `gorm:"not null;index"`
	ReferralID *int64          `gorm:"uniqueIndex"`
	PayoutID   *string         `gorm:"type:varchar(20);index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Date       time.Time       `gorm:"not null;index"`
	Source     earning.Source  `gorm:"type:varchar(20);not null;default:'referral'"`
	Status     earning.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes      string          `gorm:"type:text"`
	ApprovedBy *string         `gorm:"type:varchar(64)"`
	ApprovedAt *time.Time
	RejectedBy *string `gorm:"type:varchar(64)"`
	RejectedAt *time.Time
	AggregateModel
}

// TableName returns the table name for GORM
func (EarningModel) TableName() string {
	return "earnings"
}

// ToDomain converts the persistence model to a domain Earning.
func (m *EarningModel) ToDomain() *earning.Earning {
	return &earning.Earning{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		PartnerID:         m.PartnerID,
		ReferralID:        m.ReferralID,
		PayoutID:          m.PayoutID,
		Amount:            m.Amount,
		Date:              m.Date,
		Source:            m.Source,
		Status:            m.Status,
		Notes:             m.Notes,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		RejectedBy:        m.RejectedBy,
		RejectedAt:        m.RejectedAt,
	}
}

// EarningModelFromDomain creates a persistence model from a domain Earning.
func EarningModelFromDomain(e *earning.Earning) *EarningModel {
	m := &EarningModel{
		ID:         e.ID,
		PartnerID:  e.PartnerID,
		ReferralID: e.ReferralID,
		PayoutID:   e.PayoutID,
		Amount:     e.Amount,
		Date:       e.Date,
		Source:     e.Source,
		Status:     e.Status,
		Notes:      e.Notes,
		ApprovedBy: e.ApprovedBy,
		ApprovedAt: e.ApprovedAt,
		RejectedBy: e.RejectedBy,
		RejectedAt: e.RejectedAt,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}
