package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEarningRepository implements earning.Repository using GORM
type GormEarningRepository struct {
	db *gorm.DB
}

// NewGormEarningRepository creates a new GormEarningRepository
func NewGormEarningRepository(db *gorm.DB) *GormEarningRepository {
	return &GormEarningRepository{db: db}
}

// FindByID finds an earning by its ID
func (r *GormEarningRepository) FindByID(ctx context.Context, id int64) (*earning.Earning, error) {
	var model models.EarningModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an earning and locks its row (SELECT ... FOR UPDATE)
func (r *GormEarningRepository) FindByIDForUpdate(ctx context.Context, id int64) (*earning.Earning, error) {
	var model models.EarningModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByReferralID returns the earning created for a referral
func (r *GormEarningRepository) FindByReferralID(ctx context.Context, referralID int64) (*earning.Earning, error) {
	var model models.EarningModel
	if err := r.db.WithContext(ctx).First(&model, "referral_id = ?", referralID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByPayoutID returns earnings linked to a payout
func (r *GormEarningRepository) FindByPayoutID(ctx context.Context, payoutID string) ([]*earning.Earning, error) {
	var earningModels []models.EarningModel
	if err := r.db.WithContext(ctx).
		Where("payout_id = ?", payoutID).
		Order("id ASC").
		Find(&earningModels).Error; err != nil {
		return nil, err
	}
	return earningsToDomain(earningModels), nil
}

// FindByReferralIDsForUpdate returns the partner's earnings for the given referrals and
// locks them for the rest of the transaction. Rows are locked in id order.
func (r *GormEarningRepository) FindByReferralIDsForUpdate(ctx context.Context, partnerID int64, referralIDs []int64) ([]*earning.Earning, error) {
	if len(referralIDs) == 0 {
		return []*earning.Earning{}, nil
	}
	var earningModels []models.EarningModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("partner_id = ? AND referral_id IN ?", partnerID, referralIDs).
		Order("id ASC").
		Find(&earningModels).Error; err != nil {
		return nil, fmt.Errorf("failed to lock earnings: %w", err)
	}
	return earningsToDomain(earningModels), nil
}

// ClaimForPayout moves an available earning to processing with a compare-and-swap on status.
// A concurrent claim that got there first leaves RowsAffected at zero.
func (r *GormEarningRepository) ClaimForPayout(ctx context.Context, id int64, payoutID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EarningModel{}).
		Where("id = ? AND status = ?", id, earning.StatusAvailable).
		Updates(map[string]any{
			"status":     earning.StatusProcessing,
			"payout_id":  payoutID,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim earning %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// List returns earnings matching the filter and the total count
func (r *GormEarningRepository) List(ctx context.Context, filter earning.Filter) ([]*earning.Earning, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.EarningModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var earningModels []models.EarningModel
	if err := paginate(query, filter.Filter, EarningSortFields).Find(&earningModels).Error; err != nil {
		return nil, 0, err
	}
	return earningsToDomain(earningModels), total, nil
}

type earningStatusRow struct {
	Status earning.Status
	Amount decimal.Decimal
}

// Summary totals earnings matching the filter by bucket.
// Pending includes earnings waiting for approval; cancelled and rejected earnings count nowhere.
func (r *GormEarningRepository) Summary(ctx context.Context, filter earning.Filter) (*earning.Summary, error) {
	var rows []earningStatusRow
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.EarningModel{}), filter).
		Select("status, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize earnings: %w", err)
	}

	s := &earning.Summary{
		Total:      decimal.Zero,
		Available:  decimal.Zero,
		Pending:    decimal.Zero,
		Processing: decimal.Zero,
		Paid:       decimal.Zero,
	}
	for _, row := range rows {
		switch row.Status {
		case earning.StatusAvailable:
			s.Available = s.Available.Add(row.Amount)
		case earning.StatusPending, earning.StatusPendingApproval:
			s.Pending = s.Pending.Add(row.Amount)
		case earning.StatusProcessing:
			s.Processing = s.Processing.Add(row.Amount)
		case earning.StatusPaid:
			s.Paid = s.Paid.Add(row.Amount)
		default:
			continue
		}
		s.Total = s.Total.Add(row.Amount)
	}
	s.Total = s.Total.Round(2)
	s.Available = s.Available.Round(2)
	s.Pending = s.Pending.Round(2)
	s.Processing = s.Processing.Round(2)
	s.Paid = s.Paid.Round(2)
	return s, nil
}

// ListForStats returns live earnings dated within [from, to), oldest first
func (r *GormEarningRepository) ListForStats(ctx context.Context, partnerID *int64, from, to time.Time) ([]*earning.Earning, error) {
	query := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Where("status NOT IN ?", []earning.Status{earning.StatusCancelled, earning.StatusRejected})
	if partnerID != nil {
		query = query.Where("partner_id = ?", *partnerID)
	}

	var earningModels []models.EarningModel
	if err := query.Order("date ASC, id ASC").Find(&earningModels).Error; err != nil {
		return nil, err
	}
	return earningsToDomain(earningModels), nil
}

// Create inserts a new earning and assigns its ID.
// A second earning for the same referral violates the unique index and yields ErrAlreadyExists.
func (r *GormEarningRepository) Create(ctx context.Context, e *earning.Earning) error {
	model := models.EarningModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	e.ID = model.ID
	return nil
}

// Update saves an earning with optimistic locking on Version
func (r *GormEarningRepository) Update(ctx context.Context, e *earning.Earning) error {
	model := models.EarningModelFromDomain(e)
	result := r.db.WithContext(ctx).
		Model(&models.EarningModel{}).
		Select("*").
		Omit("id", "created_at").
		Where("id = ? AND version = ?", e.ID, e.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConflict("earning")
	}
	return nil
}

// applyFilter applies filter options without pagination
func (r *GormEarningRepository) applyFilter(query *gorm.DB, filter earning.Filter) *gorm.DB {
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	switch filter.PayoutState {
	case earning.PayoutStatePaid:
		query = query.Where("status = ?", earning.StatusPaid)
	case earning.PayoutStateUnpaid:
		query = query.Where("status <> ?", earning.StatusPaid)
	}
	return query
}

func earningsToDomain(earningModels []models.EarningModel) []*earning.Earning {
	earnings := make([]*earning.Earning, len(earningModels))
	for i := range earningModels {
		earnings[i] = earningModels[i].ToDomain()
	}
	return earnings
}

// Ensure GormEarningRepository implements earning.Repository
var _ earning.Repository = (*GormEarningRepository)(nil)
