package partner

import (
	"context"
	"errors"

	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProfileService handles partner profile operations
type ProfileService struct {
	profileRepo partner.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo partner.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// ResolveActor builds the caller identity for an authenticated user.
// A user without a partner profile gets an actor with no partner.
func (s *ProfileService) ResolveActor(ctx context.Context, userID string, isStaff bool) (shared.Actor, error) {
	actor := shared.Actor{ActorID: userID, IsStaff: isStaff}
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return actor, nil
		}
		return shared.Actor{}, err
	}
	id := profile.ID
	actor.PartnerID = &id
	return actor, nil
}

// Register creates the caller's partner profile. A user may own only one.
func (s *ProfileService) Register(ctx context.Context, actor shared.Actor, req RegisterPartnerRequest) (resp *PartnerResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "partner", "register", telemetry.AttrActor, actor.ActorID)
	defer telemetry.End(span, &err)

	existing, err := s.profileRepo.FindByUserID(ctx, actor.ActorID)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A partner profile already exists for this user")
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	profile, err := partner.NewProfile(actor.ActorID, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	profile.SetContact(req.Phone, req.CompanyName, req.Website)

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Partner registered",
		zap.Int64("partner_id", profile.ID),
		zap.String("referral_code", profile.ReferralCode),
	)
	response := ToPartnerResponse(profile)
	return &response, nil
}

// GetByUser returns the caller's own profile
func (s *ProfileService) GetByUser(ctx context.Context, actor shared.Actor) (*PartnerResponse, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, actor.ActorID)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(profile)
	return &response, nil
}

// GetByID returns a profile visible to the caller
func (s *ProfileService) GetByID(ctx context.Context, actor shared.Actor, id int64) (*PartnerResponse, error) {
	if !actor.CanAccessPartner(id) {
		return nil, shared.ErrForbidden
	}
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(profile)
	return &response, nil
}

// List returns partner profiles. Staff only.
func (s *ProfileService) List(ctx context.Context, actor shared.Actor, filter PartnerListFilter) ([]PartnerResponse, int64, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, 0, err
	}

	domainFilter := partner.ProfileFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: partner.ProfileStatus(filter.Status),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	profiles, total, err := s.profileRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPartnerResponses(profiles), total, nil
}

// UpdateStatus activates, deactivates or suspends a partner. Staff only.
func (s *ProfileService) UpdateStatus(ctx context.Context, actor shared.Actor, id int64, req UpdatePartnerStatusRequest) (*PartnerResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := profile.ChangeStatus(partner.ProfileStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Partner status changed",
		zap.Int64("partner_id", profile.ID),
		zap.String("status", req.Status),
	)
	response := ToPartnerResponse(profile)
	return &response, nil
}
