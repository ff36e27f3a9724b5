package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements referral.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*referral.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns products ordered by name
func (r *GormProductRepository) List(ctx context.Context, activeOnly bool) ([]*referral.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var productModels []models.ProductModel
	if err := query.Order("name ASC").Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]*referral.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *referral.Product) error {
	model := models.ProductModelFromDomain(product)
	now := time.Now()
	model.UpdatedAt = now
	if product.ID == 0 {
		model.CreatedAt = now
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		product.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Model(model).Select("*").Omit("created_at").
		Where("id = ?", product.ID).Updates(model).Error
}

// Ensure GormProductRepository implements ProductRepository
var _ referral.ProductRepository = (*GormProductRepository)(nil)
