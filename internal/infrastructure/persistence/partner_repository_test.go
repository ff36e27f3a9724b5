package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPartner(t *testing.T, repo *GormPartnerProfileRepository, userID, name string) *partner.Profile {
	t.Helper()
	profile, err := partner.NewProfile(userID, name, userID+"@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), profile))
	return profile
}

func TestGormPartnerProfileRepository_SaveAndFind(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormPartnerProfileRepository(db)
	ctx := context.Background()

	profile := createTestPartner(t, repo, "user-1", "Acme Partners")
	require.Greater(t, profile.ID, int64(0))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Partners", found.Name)
		assert.Equal(t, profile.ReferralCode, found.ReferralCode)
		assert.Equal(t, partner.ProfileStatusActive, found.Status)
	})

	t.Run("finds by user id", func(t *testing.T) {
		found, err := repo.FindByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, profile.ID, found.ID)
	})

	t.Run("finds by referral code regardless of case", func(t *testing.T) {
		found, err := repo.FindByReferralCode(ctx, "  "+strings.ToLower(profile.ReferralCode)+" ")
		require.NoError(t, err)
		assert.Equal(t, profile.ID, found.ID)
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		_, err := repo.FindByUserID(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByUserID(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("second profile for the same user already exists", func(t *testing.T) {
		dup, err := partner.NewProfile("user-1", "Other", "other@example.com")
		require.NoError(t, err)
		err = repo.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("updates an existing profile", func(t *testing.T) {
		profile.SetContact("+254700000000", "Acme Ltd", "https://acme.example")
		require.NoError(t, repo.Save(ctx, profile))

		found, err := repo.FindByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Ltd", found.CompanyName)
		assert.Equal(t, "+254700000000", found.Phone)
	})
}

func TestGormPartnerProfileRepository_List(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormPartnerProfileRepository(db)
	ctx := context.Background()

	createTestPartner(t, repo, "user-a", "Alpha")
	beta := createTestPartner(t, repo, "user-b", "Beta")
	createTestPartner(t, repo, "user-c", "Gamma")

	require.NoError(t, beta.ChangeStatus(partner.ProfileStatusSuspended))
	require.NoError(t, repo.Save(ctx, beta))

	t.Run("filters by status", func(t *testing.T) {
		profiles, total, err := repo.List(ctx, partner.ProfileFilter{
			Filter: shared.DefaultFilter(),
			Status: partner.ProfileStatusSuspended,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, profiles, 1)
		assert.Equal(t, "Beta", profiles[0].Name)
	})

	t.Run("searches by name and paginates", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 1, OrderBy: "name", OrderDir: "asc"}
		profiles, total, err := repo.List(ctx, partner.ProfileFilter{Filter: filter})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, profiles, 1)
		assert.Equal(t, "Alpha", profiles[0].Name)

		filter.Search = "gam"
		profiles, total, err = repo.List(ctx, partner.ProfileFilter{Filter: filter})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Gamma", profiles[0].Name)
	})
}

func TestGormProductRepository(t *testing.T) {
	db := setupAffiliateTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	crm, err := referral.NewProduct("CRM Suite", "", "10%", "5000")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, crm))
	require.Greater(t, crm.ID, int64(0))

	legacy, err := referral.NewProduct("Legacy Tool", "", "200", "")
	require.NoError(t, err)
	legacy.Active = false
	require.NoError(t, repo.Save(ctx, legacy))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, crm.ID)
		require.NoError(t, err)
		assert.Equal(t, "10%", found.Commission)
		assert.True(t, found.Active)
	})

	t.Run("lists active products only", func(t *testing.T) {
		products, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "CRM Suite", products[0].Name)

		all, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
