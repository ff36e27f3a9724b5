package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitTestReferral(t *testing.T, repo *GormReferralRepository, partnerID int64, client string, commission string) *referral.Referral {
	t.Helper()
	potential := decimal.RequireFromString(commission)
	ref, err := referral.Submit(referral.SubmitParams{
		UserID:              "user-1",
		PartnerID:           &partnerID,
		PartnerCode:         "REF-0000TEST",
		ClientName:          client,
		ClientEmail:         "client@example.com",
		ClientPhone:         "+15550100",
		ProductName:         "CRM Suite",
		Timeline:            referral.TimelineImmediate,
		PotentialCommission: &potential,
		SubmittedAt:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), ref))
	return ref
}

func TestGormReferralRepository_CreateAndUpdate(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormReferralRepository(db)
	timeline := NewGormReferralTimelineRepository(db)
	ctx := context.Background()

	ref := submitTestReferral(t, repo, 1, "Jane Client", "500.00")
	require.Greater(t, ref.ID, int64(0))

	t.Run("round trips the referral", func(t *testing.T) {
		found, err := repo.FindByID(ctx, ref.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Client", found.ClientName)
		assert.Equal(t, referral.StatusPending, found.Status)
		assert.Equal(t, "REF-0000TEST", found.ReferralCode)
		assert.True(t, found.PotentialCommission.Equal(decimal.NewFromInt(500)))
		assert.Nil(t, found.ActualCommission)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("status change writes the referral and its timeline entry", func(t *testing.T) {
		loaded, err := repo.FindByIDForUpdate(ctx, ref.ID)
		require.NoError(t, err)

		changed, err := loaded.ChangeStatus(referral.StatusConverted, "staff-1", time.Time{})
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, repo.Update(ctx, loaded))
		assert.Empty(t, loaded.PendingTimelineEntries())

		found, err := repo.FindByID(ctx, ref.ID)
		require.NoError(t, err)
		assert.Equal(t, referral.StatusConverted, found.Status)
		assert.Equal(t, referral.StatusPending, found.PrevStatus)
		require.NotNil(t, found.ActualCommission)
		assert.True(t, found.ActualCommission.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 2, found.Version)

		entries, err := timeline.FindByReferralID(ctx, ref.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Status changed from pending to converted", entries[0].Note)
		assert.Equal(t, "staff-1", entries[0].CreatedBy)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, ref.ID)
		require.NoError(t, err)
		stale.Version = 1
		_, err = stale.ChangeStatus(referral.StatusRejected, "staff-2", time.Time{})
		require.NoError(t, err)

		err = repo.Update(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("notes are appended in order", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, ref.ID)
		require.NoError(t, err)
		entry, err := loaded.AddNote("Called the client", "user-1", time.Time{})
		require.NoError(t, err)
		require.NoError(t, timeline.Append(ctx, entry))
		assert.Greater(t, entry.ID, int64(0))

		entries, err := timeline.FindByReferralID(ctx, ref.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Called the client", entries[1].Note)
		assert.Equal(t, referral.StatusConverted, entries[1].Status)
	})

	t.Run("missing referral is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 4040)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormReferralRepository_ListAndStats(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormReferralRepository(db)
	ctx := context.Background()

	a := submitTestReferral(t, repo, 1, "Alice Smith", "100.00")
	submitTestReferral(t, repo, 1, "Bob Jones", "250.50")
	submitTestReferral(t, repo, 2, "Carol White", "75.00")

	_, err := a.ChangeStatus(referral.StatusConverted, "staff-1", time.Time{})
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, a))

	partnerOne := int64(1)

	t.Run("scopes to a partner", func(t *testing.T) {
		refs, total, err := repo.List(ctx, referral.Filter{Filter: shared.DefaultFilter(), PartnerID: &partnerOne})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, refs, 2)
	})

	t.Run("searches client fields", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Search = "carol"
		refs, total, err := repo.List(ctx, referral.Filter{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Carol White", refs[0].ClientName)
	})

	t.Run("filters by commission range and status", func(t *testing.T) {
		min := decimal.NewFromInt(80)
		max := decimal.NewFromInt(200)
		refs, total, err := repo.List(ctx, referral.Filter{
			Filter:        shared.DefaultFilter(),
			MinCommission: &min,
			MaxCommission: &max,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, a.ID, refs[0].ID)

		refs, _, err = repo.List(ctx, referral.Filter{Filter: shared.DefaultFilter(), Status: referral.StatusPending})
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})

	t.Run("finds converted referrals owned by the partner", func(t *testing.T) {
		refs, err := repo.FindConvertedByIDs(ctx, 1, []int64{a.ID, a.ID + 1, a.ID + 2})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, a.ID, refs[0].ID)

		refs, err = repo.FindConvertedByIDs(ctx, 2, []int64{a.ID})
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("aggregates stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx, referral.Filter{PartnerID: &partnerOne})
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, int64(1), stats.ByStatus[referral.StatusConverted])
		assert.Equal(t, int64(1), stats.ByStatus[referral.StatusPending])
		assert.Equal(t, int64(0), stats.ByStatus[referral.StatusRejected])
		assert.Equal(t, "350.50", stats.TotalPotential.StringFixed(2))
		assert.Equal(t, "100.00", stats.TotalActual.StringFixed(2))
		assert.Equal(t, "50.00", stats.ConversionRatePct.StringFixed(2))
	})

	t.Run("empty stats have zero conversion", func(t *testing.T) {
		nobody := int64(99)
		stats, err := repo.Stats(ctx, referral.Filter{PartnerID: &nobody})
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.True(t, stats.ConversionRatePct.IsZero())
	})
}
