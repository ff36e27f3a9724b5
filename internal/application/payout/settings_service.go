package payout

import (
	"context"
	"errors"

	appshared "github.com/affiliate/backend/internal/application/shared"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SettingsService manages each partner's payout preferences
type SettingsService struct {
	txScope     appshared.TransactionScope
	settingRepo payout.SettingRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(txScope appshared.TransactionScope, settingRepo payout.SettingRepository) *SettingsService {
	return &SettingsService{
		txScope:     txScope,
		settingRepo: settingRepo,
	}
}

// Get returns the partner's settings, or the defaults when none were saved
func (s *SettingsService) Get(ctx context.Context, actor shared.Actor, partnerID *int64) (*SettingResponse, error) {
	id, err := settingsPartner(actor, partnerID)
	if err != nil {
		return nil, err
	}
	setting, err := s.settingRepo.FindByPartnerID(ctx, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		setting = payout.DefaultSetting(id)
	}
	response := ToSettingResponse(setting)
	return &response, nil
}

// Update validates and saves the partner's settings. Payment details are checked
// against the resulting payment method's required fields.
func (s *SettingsService) Update(ctx context.Context, actor shared.Actor, partnerID *int64, req UpdateSettingRequest) (*SettingResponse, error) {
	id, err := settingsPartner(actor, partnerID)
	if err != nil {
		return nil, err
	}

	var setting *payout.Setting
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		setting, err = repos.PayoutSettingRepo().FindByPartnerID(ctx, id)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			setting = payout.DefaultSetting(id)
		}
		if err := setting.Apply(payout.SettingUpdate{
			PaymentMethod:       req.PaymentMethod,
			PaymentDetails:      req.PaymentDetails,
			MinimumPayoutAmount: req.MinimumPayoutAmount,
			AutoPayout:          req.AutoPayout,
			Schedule:            req.PayoutSchedule,
		}); err != nil {
			return err
		}
		return repos.PayoutSettingRepo().Save(ctx, setting)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Payout settings saved",
		zap.Int64("partner_id", id),
		zap.String("payment_method", string(setting.PaymentMethod)),
		zap.String("payout_schedule", string(setting.Schedule)),
	)
	response := ToSettingResponse(setting)
	return &response, nil
}

// ListPaymentMethods describes every supported payment method
func (s *SettingsService) ListPaymentMethods() []PaymentMethodInfo {
	methods := make([]PaymentMethodInfo, len(payout.AllPaymentMethods))
	for i, m := range payout.AllPaymentMethods {
		methods[i] = PaymentMethodInfo{
			Method:            string(m),
			RequiredFields:    m.RequiredFields(),
			RecommendedFields: m.RecommendedFields(),
		}
	}
	return methods
}

// ListSchedules returns the supported payout schedules
func (s *SettingsService) ListSchedules() []string {
	schedules := make([]string, len(payout.AllSchedules))
	for i, sc := range payout.AllSchedules {
		schedules[i] = string(sc)
	}
	return schedules
}

// settingsPartner resolves whose settings are addressed. Staff must name a partner.
func settingsPartner(actor shared.Actor, requested *int64) (int64, error) {
	id, err := actor.ScopePartnerID(requested)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, shared.NewValidationError("Partner is required",
			shared.FieldError{Field: "partner_id", Message: "This field is required."})
	}
	return *id, nil
}
