package referral

import (
	"context"
	"errors"
	"time"

	appshared "github.com/affiliate/backend/internal/application/shared"
	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/partner"
	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReferralService drives the referral lifecycle: submission, status changes,
// timeline notes and the earning created on conversion
type ReferralService struct {
	txScope        appshared.TransactionScope
	referralRepo   referral.Repository
	timelineRepo   referral.TimelineRepository
	productRepo    referral.ProductRepository
	profileRepo    partner.ProfileRepository
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	txScope appshared.TransactionScope,
	referralRepo referral.Repository,
	timelineRepo referral.TimelineRepository,
	productRepo referral.ProductRepository,
	profileRepo partner.ProfileRepository,
) *ReferralService {
	return &ReferralService{
		txScope:      txScope,
		referralRepo: referralRepo,
		timelineRepo: timelineRepo,
		productRepo:  productRepo,
		profileRepo:  profileRepo,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for lifecycle events
func (s *ReferralService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Submit records a new referral for the caller.
// The caller's partner profile, when present, supplies the partner and referral code.
func (s *ReferralService) Submit(ctx context.Context, actor shared.Actor, req SubmitReferralRequest) (resp *ReferralResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "referral", "submit", telemetry.AttrActor, actor.ActorID)
	defer telemetry.End(span, &err)

	params := referral.SubmitParams{
		UserID:              actor.ActorID,
		ReferralCode:        req.ReferralCode,
		ClientName:          req.ClientName,
		ClientEmail:         req.ClientEmail,
		ClientPhone:         req.ClientPhone,
		ClientCompany:       req.ClientCompany,
		ProductName:         req.ProductName,
		BudgetRange:         req.BudgetRange,
		Notes:               req.Notes,
		Timeline:            referral.Timeline(req.Timeline),
		PotentialCommission: req.PotentialCommission,
		SubmittedAt:         s.now(),
	}

	profile, err := s.profileRepo.FindByUserID(ctx, actor.ActorID)
	switch {
	case err == nil:
		id := profile.ID
		params.PartnerID = &id
		params.PartnerCode = profile.ReferralCode
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if req.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Invalid product",
					shared.FieldError{Field: "product", Message: "Invalid pk - object does not exist."})
			}
			return nil, err
		}
		params.Product = product
	}

	ref, err := referral.Submit(params)
	if err != nil {
		return nil, err
	}
	if warning := ref.CommissionWarning(); warning != "" {
		logger.L(ctx).Warn("Could not estimate referral commission",
			zap.String("reason", warning),
			zap.Int64p("product_id", ref.ProductID),
		)
	}

	if err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.ReferralRepo().Create(ctx, ref)
	}); err != nil {
		return nil, err
	}
	ref.RecordSubmitted()

	telemetry.SetAttributes(span, telemetry.AttrReferral, ref.ID, telemetry.AttrPartnerID, ref.PartnerID)
	logger.L(ctx).Info("Referral submitted",
		zap.Int64("referral_id", ref.ID),
		zap.String("referral_code", ref.ReferralCode),
		zap.String("potential_commission", ref.PotentialCommission.StringFixed(2)),
	)
	appshared.PublishEvents(ctx, s.eventPublisher, appshared.CollectEvents(ref))

	response := ToReferralResponse(ref)
	return &response, nil
}

// UpdateStatus moves a referral to a new status. Converting a referral locks its actual
// commission and creates its earning in the same transaction.
func (s *ReferralService) UpdateStatus(ctx context.Context, actor shared.Actor, id int64, req UpdateReferralStatusRequest) (resp *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "referral", "update_status",
		telemetry.AttrReferral, id, telemetry.AttrStatus, req.Status)
	defer telemetry.End(span, &err)

	var (
		ref     *referral.Referral
		changed bool
		created *earning.Earning
		linked  *earning.Earning
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		ref, err = repos.ReferralRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !canAccess(actor, ref) {
			return shared.ErrForbidden
		}

		changed, err = ref.ChangeStatus(referral.Status(req.Status), actor.ActorID, s.now())
		if err != nil {
			return err
		}
		attached := false
		if ref.IsConverted() {
			if attached, err = s.resolvePartner(ctx, repos, ref); err != nil {
				return err
			}
		}
		if changed || attached {
			if !changed {
				ref.IncrementVersion()
			}
			if err := repos.ReferralRepo().Update(ctx, ref); err != nil {
				return err
			}
		}
		if !ref.IsConverted() {
			return nil
		}
		linked, created, err = s.ensureEarning(ctx, repos, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		logger.L(ctx).Info("Referral status changed",
			zap.Int64("referral_id", ref.ID),
			zap.String("from", string(ref.PrevStatus)),
			zap.String("to", string(ref.Status)),
		)
	}
	events := appshared.CollectEvents(ref)
	if created != nil {
		events = append(events, appshared.CollectEvents(created)...)
	}
	appshared.PublishEvents(ctx, s.eventPublisher, events)

	result := &StatusChangeResponse{Referral: ToReferralResponse(ref), Changed: changed}
	if linked != nil {
		eid := linked.ID
		result.EarningID = &eid
	}
	return result, nil
}

// CreateEarning creates the earning owed for a converted referral. Calling it again
// for the same referral returns the existing earning. Staff only.
func (s *ReferralService) CreateEarning(ctx context.Context, actor shared.Actor, id int64) (*earning.Earning, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	var linked, created *earning.Earning
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		ref, err := repos.ReferralRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !ref.IsConverted() {
			return shared.NewDomainError(shared.CodeInvalidState, "Earnings can only be created for converted referrals")
		}
		attached, err := s.resolvePartner(ctx, repos, ref)
		if err != nil {
			return err
		}
		if attached {
			ref.IncrementVersion()
			if err := repos.ReferralRepo().Update(ctx, ref); err != nil {
				return err
			}
		}
		linked, created, err = s.ensureEarning(ctx, repos, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created != nil {
		appshared.PublishEvents(ctx, s.eventPublisher, appshared.CollectEvents(created))
	}
	return linked, nil
}

// resolvePartner attaches the profile the submitting user registered after submitting.
// Reports whether the referral gained a partner; a user with no profile is not an error.
func (s *ReferralService) resolvePartner(ctx context.Context, repos appshared.TransactionalRepositories, ref *referral.Referral) (bool, error) {
	if ref.PartnerID != nil {
		return false, nil
	}
	profile, err := repos.PartnerRepo().FindByUserID(ctx, ref.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !ref.AttachPartner(profile.ID) {
		return false, nil
	}
	logger.L(ctx).Info("Partner attached to referral",
		zap.Int64("referral_id", ref.ID),
		zap.Int64("partner_id", profile.ID),
	)
	return true, nil
}

// ensureEarning returns the referral's earning, creating it if none exists yet.
// created is nil when the earning already existed. A referral without a partner gets
// no earning and no error.
func (s *ReferralService) ensureEarning(ctx context.Context, repos appshared.TransactionalRepositories, ref *referral.Referral) (linked, created *earning.Earning, err error) {
	if ref.PartnerID == nil {
		logger.L(ctx).Warn("Converted referral has no partner, no earning created",
			zap.Int64("referral_id", ref.ID),
			zap.String("user_id", ref.UserID),
		)
		return nil, nil, nil
	}

	existing, err := repos.EarningRepo().FindByReferralID(ctx, ref.ID)
	if err == nil {
		return existing, nil, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, nil, err
	}

	e, err := earning.NewReferralEarning(*ref.PartnerID, ref.ID, ref.EarningAmount())
	if err != nil {
		return nil, nil, err
	}
	if err := repos.EarningRepo().Create(ctx, e); err != nil {
		return nil, nil, err
	}
	e.RecordCreated()

	logger.L(ctx).Info("Earning created for converted referral",
		zap.Int64("referral_id", ref.ID),
		zap.Int64("earning_id", e.ID),
		zap.String("amount", e.Amount.StringFixed(2)),
		zap.String("status", string(e.Status)),
	)
	return e, e, nil
}

// AddTimelineNote appends a free-text entry to the referral's timeline
func (s *ReferralService) AddTimelineNote(ctx context.Context, actor shared.Actor, id int64, req AddTimelineNoteRequest) (*TimelineEntryResponse, error) {
	var entry *referral.TimelineEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		ref, err := repos.ReferralRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !canAccess(actor, ref) {
			return shared.ErrForbidden
		}
		entry, err = ref.AddNote(req.Note, actor.ActorID, s.now())
		if err != nil {
			return err
		}
		if err := repos.ReferralTimelineRepo().Append(ctx, entry); err != nil {
			return err
		}
		ref.ClearPendingTimelineEntries()
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToTimelineEntryResponse(entry)
	return &response, nil
}

// GetByID returns a referral visible to the caller
func (s *ReferralService) GetByID(ctx context.Context, actor shared.Actor, id int64) (*ReferralResponse, error) {
	ref, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToReferralResponse(ref)
	return &response, nil
}

// Timeline returns the referral's timeline, oldest first
func (s *ReferralService) Timeline(ctx context.Context, actor shared.Actor, id int64) ([]TimelineEntryResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.timelineRepo.FindByReferralID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTimelineEntryResponses(entries), nil
}

// List returns referrals visible to the caller
func (s *ReferralService) List(ctx context.Context, actor shared.Actor, filter ReferralListFilter) ([]ReferralResponse, int64, error) {
	domainFilter, err := s.buildFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	referrals, total, err := s.referralRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToReferralResponses(referrals), total, nil
}

// Stats aggregates the referrals visible to the caller
func (s *ReferralService) Stats(ctx context.Context, actor shared.Actor, filter ReferralListFilter) (*referral.Stats, error) {
	domainFilter, err := s.buildFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	return s.referralRepo.Stats(ctx, domainFilter)
}

func (s *ReferralService) load(ctx context.Context, actor shared.Actor, id int64) (*referral.Referral, error) {
	ref, err := s.referralRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, ref) {
		return nil, shared.ErrForbidden
	}
	return ref, nil
}

// buildFilter applies defaults and pins non-staff callers to their own referrals
func (s *ReferralService) buildFilter(actor shared.Actor, filter ReferralListFilter) (referral.Filter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "submitted_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := referral.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ProductID:     filter.ProductID,
		MinCommission: filter.MinCommission,
		MaxCommission: filter.MaxCommission,
	}

	if filter.Status != "" {
		status := referral.Status(filter.Status)
		if !status.IsValid() {
			return referral.Filter{}, shared.NewValidationError("Invalid status filter",
				shared.FieldError{Field: "status", Message: "Select a valid choice."})
		}
		domainFilter.Status = status
	}
	if filter.DateRange != "" {
		domainFilter.SubmittedFrom = referral.DateWindow(filter.DateRange).Since(s.now())
	}

	switch {
	case actor.IsStaff:
		domainFilter.PartnerID = filter.PartnerID
	case actor.HasPartner():
		id := *actor.PartnerID
		domainFilter.PartnerID = &id
	default:
		domainFilter.UserID = actor.ActorID
	}
	return domainFilter, nil
}

// canAccess reports whether actor may see ref. Referrals submitted without a partner
// profile belong to the submitting user.
func canAccess(actor shared.Actor, ref *referral.Referral) bool {
	if actor.IsStaff {
		return true
	}
	if ref.PartnerID != nil {
		return actor.CanAccessPartner(*ref.PartnerID)
	}
	return ref.UserID == actor.ActorID
}
