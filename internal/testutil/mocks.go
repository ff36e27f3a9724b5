package testutil

import (
	"context"
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Partner
// =============================================================================

// MockProfileRepository is a mock implementation of partner.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id int64) (*partner.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID string) (*partner.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByReferralCode(ctx context.Context, code string) (*partner.Profile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, filter partner.ProfileFilter) ([]*partner.Profile, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*partner.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *partner.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// =============================================================================
// Referral
// =============================================================================

// MockReferralRepository is a mock implementation of referral.Repository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) FindByID(ctx context.Context, id int64) (*referral.Referral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Referral), args.Error(1)
}

func (m *MockReferralRepository) FindByIDForUpdate(ctx context.Context, id int64) (*referral.Referral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Referral), args.Error(1)
}

func (m *MockReferralRepository) FindConvertedByIDs(ctx context.Context, partnerID int64, ids []int64) ([]*referral.Referral, error) {
	args := m.Called(ctx, partnerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Referral), args.Error(1)
}

func (m *MockReferralRepository) List(ctx context.Context, filter referral.Filter) ([]*referral.Referral, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*referral.Referral), args.Get(1).(int64), args.Error(2)
}

func (m *MockReferralRepository) Stats(ctx context.Context, filter referral.Filter) (*referral.Stats, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Stats), args.Error(1)
}

func (m *MockReferralRepository) Create(ctx context.Context, r *referral.Referral) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReferralRepository) Update(ctx context.Context, r *referral.Referral) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockTimelineRepository is a mock implementation of referral.TimelineRepository
type MockTimelineRepository struct {
	mock.Mock
}

func (m *MockTimelineRepository) Append(ctx context.Context, entries ...*referral.TimelineEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockTimelineRepository) FindByReferralID(ctx context.Context, referralID int64) ([]*referral.TimelineEntry, error) {
	args := m.Called(ctx, referralID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.TimelineEntry), args.Error(1)
}

// MockProductRepository is a mock implementation of referral.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*referral.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*referral.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, activeOnly bool) ([]*referral.Product, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *referral.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// =============================================================================
// Earning
// =============================================================================

// MockEarningRepository is a mock implementation of earning.Repository
type MockEarningRepository struct {
	mock.Mock
}

func (m *MockEarningRepository) FindByID(ctx context.Context, id int64) (*earning.Earning, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) FindByIDForUpdate(ctx context.Context, id int64) (*earning.Earning, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) FindByReferralID(ctx context.Context, referralID int64) (*earning.Earning, error) {
	args := m.Called(ctx, referralID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) FindByPayoutID(ctx context.Context, payoutID string) ([]*earning.Earning, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) FindByReferralIDsForUpdate(ctx context.Context, partnerID int64, referralIDs []int64) ([]*earning.Earning, error) {
	args := m.Called(ctx, partnerID, referralIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) ClaimForPayout(ctx context.Context, id int64, payoutID string) (bool, error) {
	args := m.Called(ctx, id, payoutID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEarningRepository) List(ctx context.Context, filter earning.Filter) ([]*earning.Earning, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*earning.Earning), args.Get(1).(int64), args.Error(2)
}

func (m *MockEarningRepository) Summary(ctx context.Context, filter earning.Filter) (*earning.Summary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*earning.Summary), args.Error(1)
}

func (m *MockEarningRepository) ListForStats(ctx context.Context, partnerID *int64, from, to time.Time) ([]*earning.Earning, error) {
	args := m.Called(ctx, partnerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*earning.Earning), args.Error(1)
}

func (m *MockEarningRepository) Create(ctx context.Context, e *earning.Earning) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEarningRepository) Update(ctx context.Context, e *earning.Earning) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// =============================================================================
// Payout
// =============================================================================

// MockPayoutRepository is a mock implementation of payout.Repository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByID(ctx context.Context, id string) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.Payout), args.Error(1)
}

func (m *MockPayoutRepository) FindByIDForUpdate(ctx context.Context, id string) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.Payout), args.Error(1)
}

func (m *MockPayoutRepository) List(ctx context.Context, filter payout.Filter) ([]*payout.Payout, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*payout.Payout), args.Get(1).(int64), args.Error(2)
}

func (m *MockPayoutRepository) Summary(ctx context.Context, filter payout.Filter) (*payout.Summary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.Summary), args.Error(1)
}

func (m *MockPayoutRepository) Timeline(ctx context.Context, id string) ([]*payout.TimelineEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payout.TimelineEntry), args.Error(1)
}

func (m *MockPayoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPayoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockSettingRepository is a mock implementation of payout.SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) FindByPartnerID(ctx context.Context, partnerID int64) (*payout.Setting, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.Setting), args.Error(1)
}

func (m *MockSettingRepository) Save(ctx context.Context, s *payout.Setting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
