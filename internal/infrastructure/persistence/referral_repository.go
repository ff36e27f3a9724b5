package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReferralRepository implements referral.Repository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// FindByID finds a referral by its ID
func (r *GormReferralRepository) FindByID(ctx context.Context, id int64) (*referral.Referral, error) {
	var model models.ReferralModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a referral and locks its row (SELECT ... FOR UPDATE)
func (r *GormReferralRepository) FindByIDForUpdate(ctx context.Context, id int64) (*referral.Referral, error) {
	var model models.ReferralModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindConvertedByIDs returns the converted referrals among ids owned by partnerID
func (r *GormReferralRepository) FindConvertedByIDs(ctx context.Context, partnerID int64, ids []int64) ([]*referral.Referral, error) {
	if len(ids) == 0 {
		return []*referral.Referral{}, nil
	}
	var referralModels []models.ReferralModel
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status = ? AND id IN ?", partnerID, referral.StatusConverted, ids).
		Order("id ASC").
		Find(&referralModels).Error; err != nil {
		return nil, err
	}
	return referralsToDomain(referralModels), nil
}

// List returns referrals matching the filter and the total count
func (r *GormReferralRepository) List(ctx context.Context, filter referral.Filter) ([]*referral.Referral, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReferralModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var referralModels []models.ReferralModel
	if err := paginate(query, filter.Filter, ReferralSortFields).Find(&referralModels).Error; err != nil {
		return nil, 0, err
	}
	return referralsToDomain(referralModels), total, nil
}

type referralStatusRow struct {
	Status    referral.Status
	Count     int64
	Potential decimal.Decimal
	Actual    decimal.Decimal
}

// Stats aggregates referrals matching the filter.
// Conversion rate is converted / total as a percentage with two decimals.
func (r *GormReferralRepository) Stats(ctx context.Context, filter referral.Filter) (*referral.Stats, error) {
	var rows []referralStatusRow
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReferralModel{}), filter).
		Select("status, COUNT(*) AS count, " +
			"COALESCE(SUM(potential_commission), 0) AS potential, " +
			"COALESCE(SUM(actual_commission), 0) AS actual").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate referral stats: %w", err)
	}

	stats := &referral.Stats{
		ByStatus:          make(map[referral.Status]int64, len(referral.AllStatuses())),
		TotalPotential:    decimal.Zero,
		TotalActual:       decimal.Zero,
		ConversionRatePct: decimal.Zero,
	}
	for _, s := range referral.AllStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByStatus[row.Status] += row.Count
		stats.TotalPotential = stats.TotalPotential.Add(row.Potential)
		stats.TotalActual = stats.TotalActual.Add(row.Actual)
	}
	stats.TotalPotential = stats.TotalPotential.Round(2)
	stats.TotalActual = stats.TotalActual.Round(2)
	if stats.Total > 0 {
		stats.ConversionRatePct = decimal.NewFromInt(stats.ByStatus[referral.StatusConverted]).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(stats.Total)).
			Round(2)
	}
	return stats, nil
}

// Create inserts a new referral, assigns its ID and writes its pending timeline entries
func (r *GormReferralRepository) Create(ctx context.Context, ref *referral.Referral) error {
	model := models.ReferralModelFromDomain(ref)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	ref.ID = model.ID
	return r.appendPending(ctx, ref)
}

// Update saves a referral with optimistic locking on Version and writes its pending timeline entries
func (r *GormReferralRepository) Update(ctx context.Context, ref *referral.Referral) error {
	model := models.ReferralModelFromDomain(ref)
	result := r.db.WithContext(ctx).
		Model(&models.ReferralModel{}).
		Select("*").
		Omit("id", "created_at").
		Where("id = ? AND version = ?", ref.ID, ref.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConflict("referral")
	}
	return r.appendPending(ctx, ref)
}

func (r *GormReferralRepository) appendPending(ctx context.Context, ref *referral.Referral) error {
	entries := ref.PendingTimelineEntries()
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		e.ReferralID = ref.ID
	}
	if err := NewGormReferralTimelineRepository(r.db).Append(ctx, entries...); err != nil {
		return err
	}
	ref.ClearPendingTimelineEntries()
	return nil
}

// applyFilter applies filter options without pagination
func (r *GormReferralRepository) applyFilter(query *gorm.DB, filter referral.Filter) *gorm.DB {
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("submitted_at >= ?", *filter.SubmittedFrom)
	}
	if filter.MinCommission != nil {
		query = query.Where("potential_commission >= ?", *filter.MinCommission)
	}
	if filter.MaxCommission != nil {
		query = query.Where("potential_commission <= ?", *filter.MaxCommission)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(client_name) LIKE ? OR LOWER(client_email) LIKE ? OR "+
			"LOWER(client_company) LIKE ? OR LOWER(product_name) LIKE ?",
			pattern, pattern, pattern, pattern)
	}
	return query
}

func referralsToDomain(referralModels []models.ReferralModel) []*referral.Referral {
	referrals := make([]*referral.Referral, len(referralModels))
	for i := range referralModels {
		referrals[i] = referralModels[i].ToDomain()
	}
	return referrals
}

// GormReferralTimelineRepository implements referral.TimelineRepository using GORM.
// Entries are insert-only.
type GormReferralTimelineRepository struct {
	db *gorm.DB
}

// NewGormReferralTimelineRepository creates a new GormReferralTimelineRepository
func NewGormReferralTimelineRepository(db *gorm.DB) *GormReferralTimelineRepository {
	return &GormReferralTimelineRepository{db: db}
}

// Append inserts timeline entries and assigns their IDs
func (r *GormReferralTimelineRepository) Append(ctx context.Context, entries ...*referral.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.ReferralTimelineModel, len(entries))
	for i, e := range entries {
		rows[i] = models.ReferralTimelineModelFromDomain(e)
		rows[i].ID = 0
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to append referral timeline: %w", err)
	}
	for i, e := range entries {
		e.ID = rows[i].ID
	}
	return nil
}

// FindByReferralID returns a referral's timeline, oldest first
func (r *GormReferralTimelineRepository) FindByReferralID(ctx context.Context, referralID int64) ([]*referral.TimelineEntry, error) {
	var rows []models.ReferralTimelineModel
	if err := r.db.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]*referral.TimelineEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure the GORM repositories implement the referral interfaces
var (
	_ referral.Repository         = (*GormReferralRepository)(nil)
	_ referral.TimelineRepository = (*GormReferralTimelineRepository)(nil)
)
