package models

import (
	"github.com/affiliate/backend/internal/domain/partner"
)

// PartnerProfileModel is the persistence model for the partner Profile aggregate.
type PartnerProfileModel struct {
	ID           int64                 `gorm:"primaryKey;autoIncrement"`
	UserID       string                `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name         string                `gorm:"type:varchar(200);not null"`
	Email        string                `gorm:"type:varchar(200);index"`
	Phone        string                `gorm:"type:varchar(50)"`
	CompanyName  string                `gorm:"type:varchar(200)"`
	Website      string                `gorm:"type:varchar(255)"`
	ReferralCode string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	Status       partner.ProfileStatus `gorm:"type:varchar(20);not null;default:'active'"`
	AggregateModel
}

// TableName returns the table name for GORM
func (PartnerProfileModel) TableName() string {
	return "partner_profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *PartnerProfileModel) ToDomain() *partner.Profile {
	return &partner.Profile{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		UserID:            m.UserID,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		CompanyName:       m.CompanyName,
		Website:           m.Website,
		ReferralCode:      m.ReferralCode,
		Status:            m.Status,
	}
}

// PartnerProfileModelFromDomain creates a persistence model from a domain Profile.
func PartnerProfileModelFromDomain(p *partner.Profile) *PartnerProfileModel {
	m := &PartnerProfileModel{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		CompanyName:  p.CompanyName,
		Website:      p.Website,
		ReferralCode: p.ReferralCode,
		Status:       p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
