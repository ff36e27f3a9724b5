package persistence

import (
	"context"
	"strings"

	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartnerProfileRepository implements ProfileRepository using GORM
type GormPartnerProfileRepository struct {
	db *gorm.DB
}

// NewGormPartnerProfileRepository creates a new GormPartnerProfileRepository
func NewGormPartnerProfileRepository(db *gorm.DB) *GormPartnerProfileRepository {
	return &GormPartnerProfileRepository{db: db}
}

// FindByID finds a profile by its ID
func (r *GormPartnerProfileRepository) FindByID(ctx context.Context, id int64) (*partner.Profile, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUserID finds the profile owned by a user
func (r *GormPartnerProfileRepository) FindByUserID(ctx context.Context, userID string) (*partner.Profile, error) {
	if userID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByReferralCode finds the profile that owns a referral code
func (r *GormPartnerProfileRepository) FindByReferralCode(ctx context.Context, code string) (*partner.Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "referral_code = ?", code)
}

func (r *GormPartnerProfileRepository) findOne(ctx context.Context, query string, arg any) (*partner.Profile, error) {
	var model models.PartnerProfileModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns profiles matching the filter and the total count
func (r *GormPartnerProfileRepository) List(ctx context.Context, filter partner.ProfileFilter) ([]*partner.Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PartnerProfileModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(referral_code) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profileModels []models.PartnerProfileModel
	if err := paginate(query, filter.Filter, PartnerSortFields).Find(&profileModels).Error; err != nil {
		return nil, 0, err
	}

	profiles := make([]*partner.Profile, len(profileModels))
	for i := range profileModels {
		profiles[i] = profileModels[i].ToDomain()
	}
	return profiles, total, nil
}

// Save creates or updates a profile, assigning the ID on create
func (r *GormPartnerProfileRepository) Save(ctx context.Context, profile *partner.Profile) error {
	model := models.PartnerProfileModelFromDomain(profile)
	if profile.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return translateError(err)
		}
		profile.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormPartnerProfileRepository implements ProfileRepository
var _ partner.ProfileRepository = (*GormPartnerProfileRepository)(nil)
