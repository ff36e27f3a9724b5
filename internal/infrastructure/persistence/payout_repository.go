package persistence

import (
	"context"
	"fmt"

	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPayoutRepository implements payout.Repository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a payout with its payout referrals
func (r *GormPayoutRepository) FindByID(ctx context.Context, id string) (*payout.Payout, error) {
	var model models.PayoutModel
	if err := r.db.WithContext(ctx).
		Preload("Referrals", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the payout row and loads its payout referrals
func (r *GormPayoutRepository) FindByIDForUpdate(ctx context.Context, id string) (*payout.Payout, error) {
	var model models.PayoutModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).
		Where("payout_id = ?", id).
		Order("id ASC").
		Find(&model.Referrals).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns payouts matching the filter and the total count.
// Payout referrals are not loaded.
func (r *GormPayoutRepository) List(ctx context.Context, filter payout.Filter) ([]*payout.Payout, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PayoutModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payoutModels []models.PayoutModel
	if err := paginate(query, filter.Filter, PayoutSortFields).Find(&payoutModels).Error; err != nil {
		return nil, 0, err
	}

	payouts := make([]*payout.Payout, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = payoutModels[i].ToDomain()
	}
	return payouts, total, nil
}

type payoutStatusRow struct {
	Status payout.Status
	Count  int64
	Amount decimal.Decimal
}

// Summary totals payouts matching the filter
func (r *GormPayoutRepository) Summary(ctx context.Context, filter payout.Filter) (*payout.Summary, error) {
	var rows []payoutStatusRow
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PayoutModel{}), filter).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize payouts: %w", err)
	}

	s := &payout.Summary{
		PendingAmount:    decimal.Zero,
		ProcessingAmount: decimal.Zero,
		CompletedAmount:  decimal.Zero,
		TotalPaid:        decimal.Zero,
	}
	for _, row := range rows {
		s.TotalPayouts += row.Count
		switch row.Status {
		case payout.StatusPending:
			s.PendingAmount = s.PendingAmount.Add(row.Amount).Round(2)
		case payout.StatusProcessing:
			s.ProcessingAmount = s.ProcessingAmount.Add(row.Amount).Round(2)
		case payout.StatusCompleted:
			s.CompletedAmount = s.CompletedAmount.Add(row.Amount).Round(2)
		}
	}
	s.TotalPaid = s.CompletedAmount
	return s, nil
}

// Timeline returns a payout's timeline, oldest first
func (r *GormPayoutRepository) Timeline(ctx context.Context, id string) ([]*payout.TimelineEntry, error) {
	var rows []models.PayoutTimelineModel
	if err := r.db.WithContext(ctx).
		Where("payout_id = ?", id).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]*payout.TimelineEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Create inserts a new payout together with its payout referrals and timeline entries
func (r *GormPayoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	model := models.PayoutModelFromDomain(p)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}

	if len(p.Referrals) > 0 {
		rows := make([]*models.PayoutReferralModel, len(p.Referrals))
		for i, pr := range p.Referrals {
			rows[i] = models.PayoutReferralModelFromDomain(pr)
		}
		if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create payout referrals: %w", translateError(err))
		}
		for i, pr := range p.Referrals {
			pr.ID = rows[i].ID
		}
	}
	return r.appendPending(ctx, p)
}

// Update saves a payout with optimistic locking on Version and writes its pending timeline entries.
// Payout referrals are immutable after creation and are not touched.
func (r *GormPayoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	model := models.PayoutModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(&models.PayoutModel{}).
		Select("*").
		Omit("id", "created_at", "request_date", clause.Associations).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConflict("payout")
	}
	return r.appendPending(ctx, p)
}

func (r *GormPayoutRepository) appendPending(ctx context.Context, p *payout.Payout) error {
	entries := p.PendingTimelineEntries()
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.PayoutTimelineModel, len(entries))
	for i, e := range entries {
		e.PayoutID = p.ID
		rows[i] = models.PayoutTimelineModelFromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to append payout timeline: %w", err)
	}
	for i, e := range entries {
		e.ID = rows[i].ID
	}
	p.ClearPendingTimelineEntries()
	return nil
}

// applyFilter applies filter options without pagination
func (r *GormPayoutRepository) applyFilter(query *gorm.DB, filter payout.Filter) *gorm.DB {
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.From != nil {
		query = query.Where("request_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("request_date <= ?", *filter.To)
	}
	return query
}

// GormPayoutSettingRepository implements payout.SettingRepository using GORM
type GormPayoutSettingRepository struct {
	db *gorm.DB
}

// NewGormPayoutSettingRepository creates a new GormPayoutSettingRepository
func NewGormPayoutSettingRepository(db *gorm.DB) *GormPayoutSettingRepository {
	return &GormPayoutSettingRepository{db: db}
}

// FindByPartnerID returns the partner's saved setting
func (r *GormPayoutSettingRepository) FindByPartnerID(ctx context.Context, partnerID int64) (*payout.Setting, error) {
	var model models.PayoutSettingModel
	if err := r.db.WithContext(ctx).First(&model, "partner_id = ?", partnerID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Save updates a saved setting or inserts the partner's first one.
// Inserts upsert on partner_id so two concurrent first saves end in one row.
func (r *GormPayoutSettingRepository) Save(ctx context.Context, s *payout.Setting) error {
	model := models.PayoutSettingModelFromDomain(s)
	if s.IsPersisted() {
		return r.db.WithContext(ctx).
			Model(&models.PayoutSettingModel{}).
			Where("id = ?", s.ID).
			Select(settingColumns).
			Updates(model).Error
	}

	if model.CreatedAt.IsZero() {
		model.CreatedAt = model.UpdatedAt
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}},
			DoUpdates: clause.AssignmentColumns(settingColumns),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save payout setting: %w", err)
	}
	saved, err := r.FindByPartnerID(ctx, s.PartnerID)
	if err != nil {
		return err
	}
	s.ID = saved.ID
	s.CreatedAt = saved.CreatedAt
	return nil
}

var settingColumns = []string{
	"payment_method", "payment_details", "minimum_payout_amount",
	"auto_payout", "payout_schedule", "updated_at",
}

// Ensure the GORM repositories implement the payout interfaces
var (
	_ payout.Repository        = (*GormPayoutRepository)(nil)
	_ payout.SettingRepository = (*GormPayoutSettingRepository)(nil)
)
