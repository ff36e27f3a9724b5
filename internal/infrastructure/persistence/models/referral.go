package models

import (
	"time"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/shopspring/decimal"
)

// ReferralModel is the persistence model for the Referral aggregate.
type ReferralModel struct {
	ID                         int64             `gorm:"primaryKey;autoIncrement"`
	UserID                     string            `gorm:"type:varchar(64);not null;index"`
	PartnerID                  *int64            `gorm:"index"`
	ReferralCode               string            `gorm:"type:varchar(50);not null;index"`
	ClientName                 string            `gorm:"type:varchar(200);not null"`
	ClientEmail                string            `gorm:"type:varchar(200);not null"`
	ClientPhone                string            `gorm:"type:varchar(50);not null"`
	ClientCompany              string            `gorm:"type:varchar(200)"`
	ProductID                  *int64            `gorm:"index"`
	ProductName                string            `gorm:"type:varchar(200)"`
	BudgetRange                string            `gorm:"type:varchar(100)"`
	Notes                      string            `gorm:"type:text"`
	Status                     referral.Status   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PrevStatus                 referral.Status   `gorm:"type:varchar(20)"`
	Timeline                   referral.Timeline `gorm:"type:varchar(20)"`
	ExpectedImplementationDate *time.Time
	PotentialCommission        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ActualCommission           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SubmittedAt                time.Time        `gorm:"not null;index"`
	UpdatedBy                  string           `gorm:"type:varchar(64)"`
	AggregateModel
}

// TableName returns the table name for GORM
func (ReferralModel) TableName() string {
	return "referrals"
}

// ToDomain converts the persistence model to a domain Referral.
func (m *ReferralModel) ToDomain() *referral.Referral {
	return &referral.Referral{
		BaseAggregateRoot:          m.ToDomainAggregateRoot(),
		ID:                         m.ID,
		UserID:                     m.UserID,
		PartnerID:                  m.PartnerID,
		ReferralCode:               m.ReferralCode,
		ClientName:                 m.ClientName,
		ClientEmail:                m.ClientEmail,
		ClientPhone:                m.ClientPhone,
		ClientCompany:              m.ClientCompany,
		ProductID:                  m.ProductID,
		ProductName:                m.ProductName,
		BudgetRange:                m.BudgetRange,
		Notes:                      m.Notes,
		Status:                     m.Status,
		PrevStatus:                 m.PrevStatus,
		Timeline:                   m.Timeline,
		ExpectedImplementationDate: m.ExpectedImplementationDate,
		PotentialCommission:        m.PotentialCommission,
		ActualCommission:           m.ActualCommission,
		SubmittedAt:                m.SubmittedAt,
		UpdatedBy:                  m.UpdatedBy,
	}
}

// ReferralModelFromDomain creates a persistence model from a domain Referral.
func ReferralModelFromDomain(r *referral.Referral) *ReferralModel {
	m := &ReferralModel{
		ID:                         r.ID,
		UserID:                     r.UserID,
		PartnerID:                  r.PartnerID,
		ReferralCode:               r.ReferralCode,
		ClientName:                 r.ClientName,
		ClientEmail:                r.ClientEmail,
		ClientPhone:                r.ClientPhone,
		ClientCompany:              r.ClientCompany,
		ProductID:                  r.ProductID,
		ProductName:                r.ProductName,
		BudgetRange:                r.BudgetRange,
		Notes:                      r.Notes,
		Status:                     r.Status,
		PrevStatus:                 r.PrevStatus,
		Timeline:                   r.Timeline,
		ExpectedImplementationDate: r.ExpectedImplementationDate,
		PotentialCommission:        r.PotentialCommission,
		ActualCommission:           r.ActualCommission,
		SubmittedAt:                r.SubmittedAt,
		UpdatedBy:                  r.UpdatedBy,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// ReferralTimelineModel is the persistence model for append-only referral timeline entries.
type ReferralTimelineModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	ReferralID int64           `gorm:"not null;index"`
	Status     referral.Status `gorm:"type:varchar(20);not null"`
	Timestamp  time.Time       `gorm:"not null"`
	Note       string          `gorm:"type:text"`
	CreatedBy  string          `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (ReferralTimelineModel) TableName() string {
	return "referral_timelines"
}

// ToDomain converts the persistence model to a domain TimelineEntry.
func (m *ReferralTimelineModel) ToDomain() *referral.TimelineEntry {
	return &referral.TimelineEntry{
		ID:         m.ID,
		ReferralID: m.ReferralID,
		Status:     m.Status,
		Timestamp:  m.Timestamp,
		Note:       m.Note,
		CreatedBy:  m.CreatedBy,
	}
}

// ReferralTimelineModelFromDomain creates a persistence model from a domain TimelineEntry.
func ReferralTimelineModelFromDomain(e *referral.TimelineEntry) *ReferralTimelineModel {
	return &ReferralTimelineModel{
		ID:         e.ID,
		ReferralID: e.ReferralID,
		Status:     e.Status,
		Timestamp:  e.Timestamp,
		Note:       e.Note,
		CreatedBy:  e.CreatedBy,
	}
}
