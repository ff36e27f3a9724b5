package models

import (
	"time"

	"github.com/affiliate/backend/internal/domain/referral"
)

// ProductModel is the persistence model for products partners refer clients for.
// Commission and price are stored as entered.
type ProductModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Commission  string    `gorm:"type:varchar(50)"`
	Price       string    `gorm:"type:varchar(50)"`
	Active      bool      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *referral.Product {
	return &referral.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Commission:  m.Commission,
		Price:       m.Price,
		Active:      m.Active,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *referral.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Commission:  p.Commission,
		Price:       p.Price,
		Active:      p.Active,
	}
}
