package payout

import (
	"context"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/persistence"
	"github.com/affiliate/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// lifecycle wires the payout service to a real SQLite schema
type lifecycle struct {
	db       *gorm.DB
	earnings *persistence.GormEarningRepository
	payouts  *persistence.GormPayoutRepository
	service  *PayoutService
}

func newLifecycle(t *testing.T) *lifecycle {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	l := &lifecycle{
		db:       db,
		earnings: persistence.NewGormEarningRepository(db),
		payouts:  persistence.NewGormPayoutRepository(db),
	}
	l.service = NewPayoutService(persistence.NewGormTransactionScope(db), l.payouts,
		stubResolver{processor: &stubProcessor{method: payout.MethodBank}})
	return l
}

// seedConverted stores a converted referral for the partner with its available earning
func (l *lifecycle) seedConverted(t *testing.T, partnerID int64, commission string) (*referral.Referral, *earning.Earning) {
	t.Helper()
	ctx := context.Background()
	amount := decimal.RequireFromString(commission)
	ref, err := referral.Submit(referral.SubmitParams{
		UserID:              "u-7",
		PartnerID:           &partnerID,
		PartnerCode:         "REF-0A1B2C3D",
		ClientName:          "Client " + commission,
		ClientEmail:         "client@acme.test",
		ClientPhone:         "+15550100",
		PotentialCommission: &amount,
		SubmittedAt:         time.Now(),
	})
	require.NoError(t, err)

	refs := persistence.NewGormReferralRepository(l.db)
	require.NoError(t, refs.Create(ctx, ref))
	changed, err := ref.ChangeStatus(referral.StatusConverted, "admin", time.Now())
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, refs.Update(ctx, ref))

	e, err := earning.NewReferralEarning(partnerID, ref.ID, ref.EarningAmount())
	require.NoError(t, err)
	require.NoError(t, l.earnings.Create(ctx, e))
	return ref, e
}

func bankDetails() map[string]any {
	return map[string]any{
		"accountName":   "Acme Partners",
		"accountNumber": "00012345",
		"routingNumber": "021000021",
		"bankName":      "First Bank",
	}
}

// createScenarioPayout has staff pay out three converted referrals worth 50, 75 and 20
func (l *lifecycle) createScenarioPayout(t *testing.T) (*PayoutResponse, []*earning.Earning) {
	t.Helper()
	var ids []int64
	var seeded []*earning.Earning
	for _, amount := range []string{"50", "75", "20"} {
		ref, e := l.seedConverted(t, 7, amount)
		ids = append(ids, ref.ID)
		seeded = append(seeded, e)
	}

	partnerID := int64(7)
	resp, err := l.service.Create(context.Background(), shared.NewStaffActor("admin"), CreatePayoutRequest{
		PartnerID:      &partnerID,
		PaymentMethod:  "bank",
		PaymentDetails: bankDetails(),
		ReferralIDs:    ids,
	})
	require.NoError(t, err)
	return resp, seeded
}

func (l *lifecycle) reload(t *testing.T, earnings []*earning.Earning) []*earning.Earning {
	t.Helper()
	out := make([]*earning.Earning, len(earnings))
	for i, e := range earnings {
		found, err := l.earnings.FindByID(context.Background(), e.ID)
		require.NoError(t, err)
		out[i] = found
	}
	return out
}

func TestPayoutLifecycle_CreateClaimsEarnings(t *testing.T) {
	l := newLifecycle(t)
	resp, seeded := l.createScenarioPayout(t)

	assert.Equal(t, "145.00", resp.Amount.StringFixed(2))
	assert.Equal(t, "pending", resp.Status)
	assert.Contains(t, resp.PaymentDetails, "account_number")

	stored, err := l.payouts.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Referrals, 3)
	sum := decimal.Zero
	for _, pr := range stored.Referrals {
		sum = sum.Add(pr.Amount)
	}
	assert.True(t, sum.Equal(stored.Amount))

	for _, e := range l.reload(t, seeded) {
		assert.Equal(t, earning.StatusProcessing, e.Status)
		require.NotNil(t, e.PayoutID)
		assert.Equal(t, resp.ID, *e.PayoutID)
	}

	t.Run("claimed earnings cannot be paid out twice", func(t *testing.T) {
		partnerID := int64(7)
		ids := make([]int64, len(stored.Referrals))
		for i, pr := range stored.Referrals {
			ids[i] = pr.ReferralID
		}
		_, err := l.service.Create(context.Background(), shared.NewStaffActor("admin"), CreatePayoutRequest{
			PartnerID:      &partnerID,
			PaymentMethod:  "bank",
			PaymentDetails: bankDetails(),
			ReferralIDs:    ids,
		})
		assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeNoEligibleEarnings, ""))
	})
}

func TestPayoutLifecycle_Complete(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	staff := shared.NewStaffActor("admin")
	created, seeded := l.createScenarioPayout(t)

	_, err := l.service.Process(ctx, staff, created.ID)
	require.NoError(t, err)

	resp, err := l.service.Complete(ctx, staff, created.ID, CompletePayoutRequest{TransactionID: "TX123"})
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "TX123", resp.TransactionID)
	assert.NotNil(t, resp.ProcessedDate)
	for _, e := range l.reload(t, seeded) {
		assert.Equal(t, earning.StatusPaid, e.Status)
	}

	timeline, err := l.service.Timeline(ctx, staff, created.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "pending", timeline[0].Status)
	assert.Equal(t, "processing", timeline[1].Status)
	assert.Equal(t, "completed", timeline[2].Status)
}

func TestPayoutLifecycle_CancelReleasesEarnings(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	staff := shared.NewStaffActor("admin")
	created, seeded := l.createScenarioPayout(t)

	_, err := l.service.Process(ctx, staff, created.ID)
	require.NoError(t, err)

	resp, err := l.service.Cancel(ctx, staff, created.ID, CancelPayoutRequest{Reason: "duplicate request"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	assert.Contains(t, resp.Note, "duplicate request")

	total := decimal.Zero
	for _, e := range l.reload(t, seeded) {
		assert.Equal(t, earning.StatusAvailable, e.Status)
		assert.Nil(t, e.PayoutID)
		total = total.Add(e.Amount)
	}
	assert.Equal(t, "145.00", total.StringFixed(2))

	_, err = l.service.Complete(ctx, staff, created.ID, CompletePayoutRequest{TransactionID: "TX999"})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodePaymentProcessing, domainErr.Code)
}

func TestPayoutLifecycle_FailedProcessorReleasesEarnings(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	l := &lifecycle{
		db:       db,
		earnings: persistence.NewGormEarningRepository(db),
		payouts:  persistence.NewGormPayoutRepository(db),
	}
	l.service = NewPayoutService(persistence.NewGormTransactionScope(db), l.payouts,
		stubResolver{processor: &stubProcessor{method: payout.MethodBank, err: assert.AnError}})

	created, seeded := l.createScenarioPayout(t)

	resp, err := l.service.Process(context.Background(), shared.NewStaffActor("admin"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	assert.Contains(t, resp.Note, "\nError: "+assert.AnError.Error())

	for _, e := range l.reload(t, seeded) {
		assert.Equal(t, earning.StatusAvailable, e.Status)
		assert.Nil(t, e.PayoutID)
	}
}
