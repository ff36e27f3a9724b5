package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProfile(t *testing.T, id int64, userID string) *partner.Profile {
	t.Helper()
	p, err := partner.NewProfile(userID, "Acme Partners", "ops@acme.test")
	require.NoError(t, err)
	p.ID = id
	return p
}

func TestProfileService_ResolveActor(t *testing.T) {
	ctx := context.Background()

	t.Run("user with profile gets partner id", func(t *testing.T) {
		repo := new(testutil.MockProfileRepository)
		repo.On("FindByUserID", ctx, "u-1").Return(newTestProfile(t, 9, "u-1"), nil)

		actor, err := NewProfileService(repo).ResolveActor(ctx, "u-1", false)
		require.NoError(t, err)
		require.NotNil(t, actor.PartnerID)
		assert.Equal(t, int64(9), *actor.PartnerID)
		assert.False(t, actor.IsStaff)
	})

	t.Run("user without profile has no partner", func(t *testing.T) {
		repo := new(testutil.MockProfileRepository)
		repo.On("FindByUserID", ctx, "admin").Return(nil, shared.ErrNotFound)

		actor, err := NewProfileService(repo).ResolveActor(ctx, "admin", true)
		require.NoError(t, err)
		assert.Nil(t, actor.PartnerID)
		assert.True(t, actor.IsStaff)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		repo := new(testutil.MockProfileRepository)
		repo.On("FindByUserID", ctx, "u-2").Return(nil, errors.New("connection refused"))

		_, err := NewProfileService(repo).ResolveActor(ctx, "u-2", false)
		assert.Error(t, err)
	})
}

func TestProfileService_Register_Success(t *testing.T) {
	repo := new(testutil.MockProfileRepository)
	service := NewProfileService(repo)
	actor := shared.Actor{ActorID: "u-1"}

	repo.On("FindByUserID", mock.Anything, "u-1").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Profile")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*partner.Profile).ID = 42
		}).
		Return(nil)

	result, err := service.Register(context.Background(), actor, RegisterPartnerRequest{
		Name:        "Acme Partners",
		Email:       "ops@acme.test",
		CompanyName: "Acme Ltd",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ID)
	assert.Equal(t, "u-1", result.UserID)
	assert.Equal(t, "Acme Ltd", result.CompanyName)
	assert.Equal(t, "active", result.Status)
	assert.Regexp(t, `^REF-[0-9A-F]{8}$`, result.ReferralCode)
	repo.AssertExpectations(t)
}

func TestProfileService_Register_AlreadyExists(t *testing.T) {
	repo := new(testutil.MockProfileRepository)
	service := NewProfileService(repo)

	repo.On("FindByUserID", mock.Anything, "u-1").Return(newTestProfile(t, 1, "u-1"), nil)

	result, err := service.Register(context.Background(), shared.Actor{ActorID: "u-1"}, RegisterPartnerRequest{Name: "Again"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProfileService_Register_ValidationError(t *testing.T) {
	repo := new(testutil.MockProfileRepository)
	service := NewProfileService(repo)

	repo.On("FindByUserID", mock.Anything, "u-1").Return(nil, shared.ErrNotFound)

	_, err := service.Register(context.Background(), shared.Actor{ActorID: "u-1"}, RegisterPartnerRequest{Name: "  "})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeValidation, domainErr.Code)
}

func TestProfileService_GetByID_Access(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockProfileRepository)
	service := NewProfileService(repo)
	repo.On("FindByID", ctx, int64(5)).Return(newTestProfile(t, 5, "u-5"), nil)

	owner := shared.NewPartnerActor("u-5", 5)
	result, err := service.GetByID(ctx, owner, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.ID)

	staff := shared.NewStaffActor("admin")
	_, err = service.GetByID(ctx, staff, 5)
	assert.NoError(t, err)

	other := shared.NewPartnerActor("u-6", 6)
	_, err = service.GetByID(ctx, other, 5)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestProfileService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("non-staff forbidden", func(t *testing.T) {
		repo := new(testutil.MockProfileRepository)
		_, _, err := NewProfileService(repo).List(ctx, shared.NewPartnerActor("u-1", 1), PartnerListFilter{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("staff with defaults", func(t *testing.T) {
		repo := new(testutil.MockProfileRepository)
		repo.On("List", ctx, mock.MatchedBy(func(f partner.ProfileFilter) bool {
			return f.Page == 1 && f.PageSize == 20 && f.Status == partner.ProfileStatusActive && f.Search == "acme"
		})).Return([]*partner.Profile{newTestProfile(t, 1, "u-1")}, int64(1), nil)

		items, total, err := NewProfileService(repo).List(ctx, shared.NewStaffActor("admin"),
			PartnerListFilter{Search: "acme", Status: "active"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, items, 1)
		repo.AssertExpectations(t)
	})
}

func TestProfileService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockProfileRepository)
	service := NewProfileService(repo)

	profile := newTestProfile(t, 3, "u-3")
	repo.On("FindByID", ctx, int64(3)).Return(profile, nil)
	repo.On("Save", ctx, profile).Return(nil)

	result, err := service.UpdateStatus(ctx, shared.NewStaffActor("admin"), 3, UpdatePartnerStatusRequest{Status: "suspended"})
	require.NoError(t, err)
	assert.Equal(t, "suspended", result.Status)

	_, err = service.UpdateStatus(ctx, shared.NewPartnerActor("u-3", 3), 3, UpdatePartnerStatusRequest{Status: "active"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
