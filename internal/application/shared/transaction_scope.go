package shared

import (
	"context"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
)

// TransactionScope provides transactional access to the affiliate repositories.
// Every repository handed to fn shares one database transaction that is committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
//
// Aggregate boundary notes:
//   - ReferralRepo writes a referral's pending timeline entries together with the referral.
//     ReferralTimelineRepo is for reading the timeline and appending standalone notes.
//   - PayoutRepo writes payout referrals and payout timeline entries with the payout.
//   - Earnings are claimed for a payout through EarningRepo().ClaimForPayout so that two
//     concurrent payout requests can never include the same earning.
type TransactionalRepositories interface {
	ReferralRepo() referral.Repository
	ReferralTimelineRepo() referral.TimelineRepository
	EarningRepo() earning.Repository
	PayoutRepo() payout.Repository
	PayoutSettingRepo() payout.SettingRepository
	PartnerRepo() partner.ProfileRepository
}

// Repositories bundles non-transactional repository implementations.
// Used by NoOpTransactionScope.
type Repositories struct {
	Referrals      referral.Repository
	Timeline       referral.TimelineRepository
	Earnings       earning.Repository
	Payouts        payout.Repository
	PayoutSettings payout.SettingRepository
	Partners       partner.ProfileRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReferralRepo returns the referral repository.
func (s *NoOpTransactionScope) ReferralRepo() referral.Repository {
	return s.repos.Referrals
}

// ReferralTimelineRepo returns the referral timeline repository.
func (s *NoOpTransactionScope) ReferralTimelineRepo() referral.TimelineRepository {
	return s.repos.Timeline
}

// EarningRepo returns the earning repository.
func (s *NoOpTransactionScope) EarningRepo() earning.Repository {
	return s.repos.Earnings
}

// PayoutRepo returns the payout repository.
func (s *NoOpTransactionScope) PayoutRepo() payout.Repository {
	return s.repos.Payouts
}

// PayoutSettingRepo returns the payout setting repository.
func (s *NoOpTransactionScope) PayoutSettingRepo() payout.SettingRepository {
	return s.repos.PayoutSettings
}

// PartnerRepo returns the partner profile repository.
func (s *NoOpTransactionScope) PartnerRepo() partner.ProfileRepository {
	return s.repos.Partners
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
