package persistence

import (
	"context"

	appshared "github.com/affiliate/backend/internal/application/shared"
	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ReferralRepo returns the referral repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReferralRepo() referral.Repository {
	return NewGormReferralRepository(r.tx)
}

// ReferralTimelineRepo returns the referral timeline repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReferralTimelineRepo() referral.TimelineRepository {
	return NewGormReferralTimelineRepository(r.tx)
}

// EarningRepo returns the earning repository scoped to the current transaction.
func (r *gormTransactionalRepositories) EarningRepo() earning.Repository {
	return NewGormEarningRepository(r.tx)
}

// PayoutRepo returns the payout repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PayoutRepo() payout.Repository {
	return NewGormPayoutRepository(r.tx)
}

// PayoutSettingRepo returns the payout setting repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PayoutSettingRepo() payout.SettingRepository {
	return NewGormPayoutSettingRepository(r.tx)
}

// PartnerRepo returns the partner profile repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PartnerRepo() partner.ProfileRepository {
	return NewGormPartnerProfileRepository(r.tx)
}

// Repositories builds the non-transactional repository set on db
func Repositories(db *gorm.DB) appshared.Repositories {
	return appshared.Repositories{
		Referrals:      NewGormReferralRepository(db),
		Timeline:       NewGormReferralTimelineRepository(db),
		Earnings:       NewGormEarningRepository(db),
		Payouts:        NewGormPayoutRepository(db),
		PayoutSettings: NewGormPayoutSettingRepository(db),
		Partners:       NewGormPartnerProfileRepository(db),
	}
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
