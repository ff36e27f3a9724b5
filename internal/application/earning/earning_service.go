package earning

import (
	"context"
	"time"

	appshared "github.com/affiliate/backend/internal/application/shared"
	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EarningService handles manual earnings and the earning status machine
type EarningService struct {
	txScope        appshared.TransactionScope
	earningRepo    earning.Repository
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewEarningService creates a new EarningService
func NewEarningService(txScope appshared.TransactionScope, earningRepo earning.Repository) *EarningService {
	return &EarningService{
		txScope:     txScope,
		earningRepo: earningRepo,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for earning events
func (s *EarningService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a staff-entered earning awaiting approval
func (s *EarningService) Create(ctx context.Context, actor shared.Actor, req CreateEarningRequest) (resp *EarningResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "earning", "create",
		telemetry.AttrPartnerID, req.PartnerID, telemetry.AttrAmount, req.Amount.String())
	defer telemetry.End(span, &err)

	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	date := time.Time{}
	if req.Date != nil {
		date = *req.Date
	}
	e, err := earning.NewManualEarning(req.PartnerID, req.Amount, earning.Source(req.Source), req.Notes, date)
	if err != nil {
		return nil, err
	}

	if err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.EarningRepo().Create(ctx, e)
	}); err != nil {
		return nil, err
	}
	e.RecordCreated()

	logger.L(ctx).Info("Manual earning created",
		zap.Int64("earning_id", e.ID),
		zap.Int64("partner_id", e.PartnerID),
		zap.String("source", string(e.Source)),
		zap.String("amount", e.Amount.StringFixed(2)),
	)
	appshared.PublishEvents(ctx, s.eventPublisher, appshared.CollectEvents(e))

	response := ToEarningResponse(e)
	return &response, nil
}

// Approve makes a pending-approval earning available. Staff only.
func (s *EarningService) Approve(ctx context.Context, actor shared.Actor, id int64) (*EarningResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.transition(ctx, "approve", id, func(e *earning.Earning) error {
		return e.Approve(actor.ActorID)
	})
}

// Reject declines a pending-approval earning. Staff only.
func (s *EarningService) Reject(ctx context.Context, actor shared.Actor, id int64, req ReasonRequest) (*EarningResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.transition(ctx, "reject", id, func(e *earning.Earning) error {
		return e.Reject(actor.ActorID, req.Reason)
	})
}

// MarkAvailable releases a pending earning. Staff only.
func (s *EarningService) MarkAvailable(ctx context.Context, actor shared.Actor, id int64) (*EarningResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.transition(ctx, "mark_available", id, guarded(earning.StatusPending, (*earning.Earning).MarkAsAvailable))
}

// MarkPaid settles a processing earning outside of a payout. Staff only.
func (s *EarningService) MarkPaid(ctx context.Context, actor shared.Actor, id int64) (*EarningResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.transition(ctx, "mark_paid", id, guarded(earning.StatusProcessing, (*earning.Earning).MarkAsPaid))
}

// Cancel voids a non-terminal earning no payout has claimed. Staff only.
func (s *EarningService) Cancel(ctx context.Context, actor shared.Actor, id int64, req ReasonRequest) (*EarningResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	return s.transition(ctx, "cancel", id, func(e *earning.Earning) error {
		if e.IsClaimed() {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Earning is claimed by payout "+*e.PayoutID+", cancel or fail the payout first")
		}
		if !e.Cancel(req.Reason) {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Cannot cancel earning in "+string(e.Status)+" status")
		}
		return nil
	})
}

// guarded adapts a boolean transition into one that reports INVALID_STATE when refused
func guarded(expected earning.Status, apply func(*earning.Earning) bool) func(*earning.Earning) error {
	return func(e *earning.Earning) error {
		if !apply(e) {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Earning is "+string(e.Status)+", expected "+string(expected))
		}
		return nil
	}
}

// transition locks the earning, applies the change and saves it in one transaction
func (s *EarningService) transition(ctx context.Context, op string, id int64, apply func(*earning.Earning) error) (resp *EarningResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "earning", op, telemetry.AttrEarning, id)
	defer telemetry.End(span, &err)

	var (
		e    *earning.Earning
		from earning.Status
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		e, err = repos.EarningRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = e.Status
		if err := apply(e); err != nil {
			return err
		}
		return repos.EarningRepo().Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Earning status changed",
		zap.Int64("earning_id", e.ID),
		zap.String("from", string(from)),
		zap.String("to", string(e.Status)),
	)
	appshared.PublishEvents(ctx, s.eventPublisher, appshared.CollectEvents(e))

	response := ToEarningResponse(e)
	return &response, nil
}

// GetByID returns an earning visible to the caller
func (s *EarningService) GetByID(ctx context.Context, actor shared.Actor, id int64) (*EarningResponse, error) {
	e, err := s.earningRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessPartner(e.PartnerID) {
		return nil, shared.ErrForbidden
	}
	response := ToEarningResponse(e)
	return &response, nil
}

// List returns earnings visible to the caller
func (s *EarningService) List(ctx context.Context, actor shared.Actor, filter EarningListFilter) ([]EarningResponse, int64, error) {
	domainFilter, err := buildFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	earnings, total, err := s.earningRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToEarningResponses(earnings), total, nil
}

// Summary totals the caller's earnings by bucket
func (s *EarningService) Summary(ctx context.Context, actor shared.Actor, filter EarningListFilter) (*earning.Summary, error) {
	domainFilter, err := buildFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.earningRepo.Summary(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	summary.Total = summary.Total.Round(2)
	summary.Available = summary.Available.Round(2)
	summary.Pending = summary.Pending.Round(2)
	summary.Processing = summary.Processing.Round(2)
	summary.Paid = summary.Paid.Round(2)
	return summary, nil
}

// Stats groups the caller's earnings by period. Months cover the last year,
// weeks the last twelve weeks and days the last thirty days.
func (s *EarningService) Stats(ctx context.Context, actor shared.Actor, req StatsRequest) (*StatsResponse, error) {
	partnerID, err := actor.ScopePartnerID(req.PartnerID)
	if err != nil {
		return nil, err
	}

	period := earning.Period(req.Period)
	if req.Period == "" {
		period = earning.PeriodMonth
	}
	if !period.IsValid() {
		return nil, shared.NewValidationError("Invalid period",
			shared.FieldError{Field: "period", Message: "Select a valid choice."})
	}

	now := s.now()
	to := period.Truncate(now)
	var from time.Time
	switch period {
	case earning.PeriodDay:
		from = to.AddDate(0, 0, -29)
	case earning.PeriodWeek:
		from = to.AddDate(0, 0, -7*11)
	default:
		from = to.AddDate(0, -11, 0)
	}
	to = now

	earnings, err := s.earningRepo.ListForStats(ctx, partnerID, from, to)
	if err != nil {
		return nil, err
	}
	points := earning.GroupByPeriod(earnings, period)
	total := decimal.Zero
	for i := range points {
		points[i].Amount = points[i].Amount.Round(2)
		total = total.Add(points[i].Amount)
	}
	return &StatsResponse{Period: string(period), From: from, To: to, Points: points, Total: total}, nil
}

// buildFilter applies defaults and pins non-staff callers to their own partner
func buildFilter(actor shared.Actor, filter EarningListFilter) (earning.Filter, error) {
	partnerID, err := actor.ScopePartnerID(filter.PartnerID)
	if err != nil {
		return earning.Filter{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := earning.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		PartnerID:   partnerID,
		From:        filter.From,
		To:          filter.To,
		MinAmount:   filter.MinAmount,
		MaxAmount:   filter.MaxAmount,
		PayoutState: earning.PayoutState(filter.PayoutStatus),
	}
	if filter.Status != "" {
		status := earning.Status(filter.Status)
		if !status.IsValid() {
			return earning.Filter{}, shared.NewValidationError("Invalid status filter",
				shared.FieldError{Field: "status", Message: "Select a valid choice."})
		}
		domainFilter.Status = status
	}
	if filter.Source != "" {
		source := earning.Source(filter.Source)
		if !source.IsValid() {
			return earning.Filter{}, shared.NewValidationError("Invalid source filter",
				shared.FieldError{Field: "source", Message: "Select a valid choice."})
		}
		domainFilter.Source = source
	}
	return domainFilter, nil
}
