package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appshared "github.com/affiliate/backend/internal/application/shared"
	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PayoutService batches available earnings into payouts and drives the payout
// status machine. Every operation that touches earnings runs in one transaction.
type PayoutService struct {
	txScope        appshared.TransactionScope
	payoutRepo     payout.Repository
	processors     payout.ProcessorResolver
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(
	txScope appshared.TransactionScope,
	payoutRepo payout.Repository,
	processors payout.ProcessorResolver,
) *PayoutService {
	return &PayoutService{
		txScope:        txScope,
		payoutRepo:     payoutRepo,
		processors:     processors,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
	}
}

// SetEventPublisher sets the event publisher for payout and earning events
func (s *PayoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on Create
func (s *PayoutService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// Create builds a payout from the partner's converted referrals whose earnings are
// still available. Each earning is claimed with a compare-and-swap on its status so
// concurrent requests never include the same earning twice.
func (s *PayoutService) Create(ctx context.Context, actor shared.Actor, req CreatePayoutRequest) (resp *PayoutResponse, err error) {
	partnerID, err := s.resolvePartner(actor, req.PartnerID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "create",
		telemetry.AttrPartnerID, partnerID, telemetry.AttrActor, actor.ActorID)
	defer telemetry.End(span, &err)

	release, err := s.claimIdempotencyKey(ctx, partnerID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	var (
		p       *payout.Payout
		claimed []*earning.Earning
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		setting, err := repos.PayoutSettingRepo().FindByPartnerID(ctx, partnerID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			setting = nil
		}

		method, details, err := resolveMethod(req, setting)
		if err != nil {
			return err
		}
		p, err = payout.NewPayout(partnerID, method, details, req.ClientNotes, actor.ActorID)
		if err != nil {
			return err
		}

		referrals, err := repos.ReferralRepo().FindConvertedByIDs(ctx, partnerID, req.ReferralIDs)
		if err != nil {
			return err
		}
		convertedIDs := make([]int64, len(referrals))
		for i, ref := range referrals {
			convertedIDs[i] = ref.ID
		}

		earnings, err := repos.EarningRepo().FindByReferralIDsForUpdate(ctx, partnerID, convertedIDs)
		if err != nil {
			return err
		}
		for _, e := range earnings {
			if e.Status != earning.StatusAvailable || e.ReferralID == nil {
				continue
			}
			ok, err := repos.EarningRepo().ClaimForPayout(ctx, e.ID, p.ID)
			if err != nil {
				return err
			}
			if !ok {
				logger.L(ctx).Warn("Earning claimed by a concurrent payout, skipping",
					zap.Int64("earning_id", e.ID),
					zap.String("payout_id", p.ID),
				)
				continue
			}
			e.MarkAsProcessing(p.ID)
			p.Include(*e.ReferralID, e.ID, e.Amount)
			claimed = append(claimed, e)
		}

		if !p.Amount.IsPositive() {
			return shared.NewDomainError(shared.CodeNoEligibleEarnings,
				"None of the selected referrals has an available earning")
		}
		if !actor.IsStaff && setting != nil && p.Amount.LessThan(setting.MinimumPayoutAmount) {
			return shared.NewDomainError(shared.CodeBelowMinimumPayout,
				fmt.Sprintf("Payout amount %s is below the minimum payout amount %s",
					p.Amount.StringFixed(2), setting.MinimumPayoutAmount.StringFixed(2)))
		}

		p.RecordCreated()
		return repos.PayoutRepo().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrPayout, p.ID, telemetry.AttrAmount, p.Amount.StringFixed(2))
	fields := []zap.Field{
		zap.String("payout_id", p.ID),
		zap.Int64("partner_id", p.PartnerID),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.Int("referrals_requested", len(req.ReferralIDs)),
		zap.Int("referrals_included", len(p.Referrals)),
	}
	if req.Amount != nil && !req.Amount.Round(2).Equal(p.Amount) {
		fields = append(fields, zap.String("requested_amount", req.Amount.StringFixed(2)))
		logger.L(ctx).Info("Payout created for less than the requested amount", fields...)
	} else {
		logger.L(ctx).Info("Payout created", fields...)
	}

	events := appshared.CollectEvents(p)
	for _, e := range claimed {
		events = append(events, appshared.CollectEvents(e)...)
	}
	appshared.PublishEvents(ctx, s.eventPublisher, events)

	response := ToPayoutResponse(p)
	if req.Amount != nil {
		requested := req.Amount.Round(2)
		response.RequestedAmount = &requested
	}
	return &response, nil
}

// Process sends a pending payout to its payment processor. A processor failure is
// not returned as an error: the payout is marked failed and its earnings released.
func (s *PayoutService) Process(ctx context.Context, actor shared.Actor, id string) (resp *PayoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "process", telemetry.AttrPayout, id)
	defer telemetry.End(span, &err)

	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	var (
		p          *payout.Payout
		released   []*earning.Earning
		processErr error
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		p, err = repos.PayoutRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !p.CanProcess() {
			return shared.NewDomainError(shared.CodePaymentProcessing,
				fmt.Sprintf("Cannot process payout in %s status, expected %s", p.Status, payout.StatusPending))
		}

		processor, err := s.processors.Resolve(p.PaymentMethod)
		if err != nil {
			return err
		}
		var tracking map[string]any
		tracking, processErr = processor.Initiate(ctx, p)
		if processErr == nil {
			if err := p.StartProcessing(actor.ActorID, tracking); err != nil {
				return err
			}
			return repos.PayoutRepo().Update(ctx, p)
		}

		if err := p.Fail(actor.ActorID, processErr.Error()); err != nil {
			return err
		}
		if err := repos.PayoutRepo().Update(ctx, p); err != nil {
			return err
		}
		released, err = releaseEarnings(ctx, repos, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	if processErr != nil {
		telemetry.AddEvent(span, "processor_failed", telemetry.AttrMethod, string(p.PaymentMethod))
		logger.L(ctx).Warn("Payment processor failed, payout marked failed",
			zap.String("payout_id", p.ID),
			zap.String("payment_method", string(p.PaymentMethod)),
			zap.Int("earnings_released", len(released)),
			zap.Error(processErr),
		)
	} else {
		logger.L(ctx).Info("Payout processing started",
			zap.String("payout_id", p.ID),
			zap.String("payment_method", string(p.PaymentMethod)),
		)
	}
	s.publish(ctx, p, released)

	response := ToPayoutResponse(p)
	return &response, nil
}

// Complete settles a processing payout and marks its earnings paid
func (s *PayoutService) Complete(ctx context.Context, actor shared.Actor, id string, req CompletePayoutRequest) (resp *PayoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "complete", telemetry.AttrPayout, id)
	defer telemetry.End(span, &err)

	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	var (
		p    *payout.Payout
		paid []*earning.Earning
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		p, err = repos.PayoutRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Complete(actor.ActorID, req.TransactionID); err != nil {
			return err
		}
		if err := repos.PayoutRepo().Update(ctx, p); err != nil {
			return err
		}
		paid, err = settleEarnings(ctx, repos, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Payout completed",
		zap.String("payout_id", p.ID),
		zap.String("transaction_id", p.TransactionID),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.Int("earnings_paid", len(paid)),
	)
	s.publish(ctx, p, paid)

	response := ToPayoutResponse(p)
	return &response, nil
}

// Fail marks a payout failed and returns its earnings to available
func (s *PayoutService) Fail(ctx context.Context, actor shared.Actor, id string, req FailPayoutRequest) (resp *PayoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "fail", telemetry.AttrPayout, id)
	defer telemetry.End(span, &err)

	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.withdraw(ctx, id, func(p *payout.Payout) error {
		return p.Fail(actor.ActorID, req.ErrorMessage)
	}, func(*payout.Payout) error { return nil })
}

// Cancel withdraws a payout and returns its earnings to available. Staff may cancel
// pending or processing payouts; the owning partner only while the payout is pending.
func (s *PayoutService) Cancel(ctx context.Context, actor shared.Actor, id string, req CancelPayoutRequest) (resp *PayoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "cancel", telemetry.AttrPayout, id)
	defer telemetry.End(span, &err)

	return s.withdraw(ctx, id, func(p *payout.Payout) error {
		return p.Cancel(actor.ActorID, req.Reason)
	}, func(p *payout.Payout) error {
		if actor.IsStaff {
			return nil
		}
		if !actor.CanAccessPartner(p.PartnerID) || p.Status != payout.StatusPending {
			return shared.ErrForbidden
		}
		return nil
	})
}

// withdraw applies a fail or cancel transition and releases the payout's earnings
func (s *PayoutService) withdraw(ctx context.Context, id string, apply, authorize func(*payout.Payout) error) (*PayoutResponse, error) {
	var (
		p        *payout.Payout
		from     payout.Status
		released []*earning.Earning
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		p, err = repos.PayoutRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(p); err != nil {
			return err
		}
		from = p.Status
		if err := apply(p); err != nil {
			return err
		}
		if err := repos.PayoutRepo().Update(ctx, p); err != nil {
			return err
		}
		released, err = releaseEarnings(ctx, repos, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Payout withdrawn",
		zap.String("payout_id", p.ID),
		zap.String("from", string(from)),
		zap.String("to", string(p.Status)),
		zap.Int("earnings_released", len(released)),
	)
	s.publish(ctx, p, released)

	response := ToPayoutResponse(p)
	return &response, nil
}

// GetByID returns a payout with its payout referrals
func (s *PayoutService) GetByID(ctx context.Context, actor shared.Actor, id string) (*PayoutResponse, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToPayoutResponse(p)
	return &response, nil
}

// Timeline returns the payout's audit trail, oldest first
func (s *PayoutService) Timeline(ctx context.Context, actor shared.Actor, id string) ([]TimelineEntryResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.payoutRepo.Timeline(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTimelineEntryResponses(entries), nil
}

// List returns payouts visible to the caller
func (s *PayoutService) List(ctx context.Context, actor shared.Actor, filter PayoutListFilter) ([]PayoutResponse, int64, error) {
	domainFilter, err := buildFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	payouts, total, err := s.payoutRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPayoutResponses(payouts), total, nil
}

// Summary totals the caller's payouts by status
func (s *PayoutService) Summary(ctx context.Context, actor shared.Actor, filter PayoutListFilter) (*payout.Summary, error) {
	domainFilter, err := buildFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.payoutRepo.Summary(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	summary.PendingAmount = summary.PendingAmount.Round(2)
	summary.ProcessingAmount = summary.ProcessingAmount.Round(2)
	summary.CompletedAmount = summary.CompletedAmount.Round(2)
	summary.TotalPaid = summary.TotalPaid.Round(2)
	return summary, nil
}

func (s *PayoutService) load(ctx context.Context, actor shared.Actor, id string) (*payout.Payout, error) {
	if !payout.IsValidID(id) {
		return nil, shared.ErrNotFound
	}
	p, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessPartner(p.PartnerID) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}

func (s *PayoutService) publish(ctx context.Context, p *payout.Payout, earnings []*earning.Earning) {
	events := appshared.CollectEvents(p)
	for _, e := range earnings {
		events = append(events, appshared.CollectEvents(e)...)
	}
	appshared.PublishEvents(ctx, s.eventPublisher, events)
}

// resolvePartner picks the partner a payout is created for. Staff must name one;
// everyone else gets their own.
func (s *PayoutService) resolvePartner(actor shared.Actor, requested *int64) (int64, error) {
	if actor.IsStaff {
		if requested == nil || *requested <= 0 {
			return 0, shared.NewValidationError("Partner is required",
				shared.FieldError{Field: "partner", Message: "This field is required."})
		}
		return *requested, nil
	}
	if !actor.HasPartner() {
		return 0, shared.ErrForbidden
	}
	return *actor.PartnerID, nil
}

// claimIdempotencyKey marks the request key as seen. The returned func forgets the key
// again so a failed request can be retried. Store outages do not block payouts.
func (s *PayoutService) claimIdempotencyKey(ctx context.Context, partnerID int64, key string) (func(), error) {
	noop := func() {}
	key = strings.TrimSpace(key)
	if key == "" || s.idempotency == nil {
		return noop, nil
	}

	scoped := fmt.Sprintf("payout:%d:%s", partnerID, key)
	fresh, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		logger.L(ctx).Warn("Idempotency store unavailable, continuing without it",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
		return noop, nil
	}
	if !fresh {
		return nil, shared.ErrDuplicateRequest
	}
	return func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), scoped); err != nil {
			logger.L(ctx).Warn("Failed to release idempotency key",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
		}
	}, nil
}

// resolveMethod falls back to the partner's saved method and details. Saved details are
// only reused when the method matches the saved one.
func resolveMethod(req CreatePayoutRequest, setting *payout.Setting) (payout.PaymentMethod, map[string]any, error) {
	methodName := strings.TrimSpace(req.PaymentMethod)
	if methodName == "" && setting != nil {
		methodName = string(setting.PaymentMethod)
	}
	if methodName == "" {
		return "", nil, shared.NewValidationError("Payment method is required",
			shared.FieldError{Field: "payment_method", Message: "This field is required."})
	}
	method, err := payout.ParsePaymentMethod(methodName)
	if err != nil {
		return "", nil, err
	}

	details := req.PaymentDetails
	if details == nil && setting != nil && setting.PaymentMethod == method {
		details = setting.PaymentDetails
	}
	return method, details, nil
}

// releaseEarnings returns the payout's processing earnings to available and unlinks them
func releaseEarnings(ctx context.Context, repos appshared.TransactionalRepositories, p *payout.Payout) ([]*earning.Earning, error) {
	linked, err := repos.EarningRepo().FindByPayoutID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	released := make([]*earning.Earning, 0, len(linked))
	for _, e := range linked {
		if !e.ReleaseFromPayout() {
			continue
		}
		if err := repos.EarningRepo().Update(ctx, e); err != nil {
			return nil, err
		}
		released = append(released, e)
	}
	return released, nil
}

// settleEarnings marks every earning behind the payout as paid. Earnings are found both
// through their payout link and through the payout referrals; an available one is
// moved through processing first. An earning claimed by a different payout is left alone.
func settleEarnings(ctx context.Context, repos appshared.TransactionalRepositories, p *payout.Payout) ([]*earning.Earning, error) {
	linked, err := repos.EarningRepo().FindByPayoutID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(linked))
	for _, e := range linked {
		seen[e.ID] = true
	}
	for _, pr := range p.Referrals {
		if seen[pr.EarningID] || pr.EarningID == 0 {
			continue
		}
		e, err := repos.EarningRepo().FindByIDForUpdate(ctx, pr.EarningID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		seen[e.ID] = true
		linked = append(linked, e)
	}

	paid := make([]*earning.Earning, 0, len(linked))
	for _, e := range linked {
		if e.PayoutID != nil && *e.PayoutID != p.ID {
			logger.L(ctx).Warn("Earning claimed by another payout, not settled",
				zap.String("payout_id", p.ID),
				zap.Int64("earning_id", e.ID),
				zap.String("claimed_by", *e.PayoutID),
			)
			continue
		}
		if e.Status == earning.StatusAvailable {
			e.MarkAsProcessing(p.ID)
			if err := repos.EarningRepo().Update(ctx, e); err != nil {
				return nil, err
			}
		}
		if !e.MarkAsPaid() {
			continue
		}
		if err := repos.EarningRepo().Update(ctx, e); err != nil {
			return nil, err
		}
		paid = append(paid, e)
	}
	return paid, nil
}

// buildFilter applies defaults and pins non-staff callers to their own payouts
func buildFilter(actor shared.Actor, filter PayoutListFilter) (payout.Filter, error) {
	partnerID, err := actor.ScopePartnerID(filter.PartnerID)
	if err != nil {
		return payout.Filter{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "request_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := payout.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		PartnerID: partnerID,
		From:      filter.From,
		To:        filter.To,
	}
	if filter.Status != "" {
		status := payout.Status(filter.Status)
		if !status.IsValid() {
			return payout.Filter{}, shared.NewValidationError("Invalid status filter",
				shared.FieldError{Field: "status", Message: "Select a valid choice."})
		}
		domainFilter.Status = status
	}
	if filter.PaymentMethod != "" {
		method, err := payout.ParsePaymentMethod(filter.PaymentMethod)
		if err != nil {
			return payout.Filter{}, err
		}
		domainFilter.PaymentMethod = method
	}
	return domainFilter, nil
}
