package handler

import (
	payoutapp "github.com/affiliate/backend/internal/application/payout"
	"github.com/gin-gonic/gin"
)

// PayoutSettingsHandler handles partner payout preferences
type PayoutSettingsHandler struct {
	BaseHandler
	settings *payoutapp.SettingsService
}

// NewPayoutSettingsHandler creates a new PayoutSettingsHandler
func NewPayoutSettingsHandler(settings *payoutapp.SettingsService) *PayoutSettingsHandler {
	return &PayoutSettingsHandler{settings: settings}
}

// Get returns the caller's settings. Staff pass ?partner_id=.
func (h *PayoutSettingsHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	partnerID, ok := h.optionalPartnerQuery(c)
	if !ok {
		return
	}
	setting, err := h.settings.Get(c.Request.Context(), actor, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}

// Update godoc
//
//	@Summary	Update payout settings
//	@Tags		payout-settings
//	@Accept		json
//	@Produce	json
//	@Param		partner_id	query		int								false	"Partner (staff only)"
//	@Param		request		body		payoutapp.UpdateSettingRequest	true	"Settings"
//	@Success	200			{object}	dto.Response
//	@Failure	400			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/payout-settings [put]
func (h *PayoutSettingsHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	partnerID, ok := h.optionalPartnerQuery(c)
	if !ok {
		return
	}
	var req payoutapp.UpdateSettingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	setting, err := h.settings.Update(c.Request.Context(), actor, partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}

// Methods lists the payment methods and their detail fields
func (h *PayoutSettingsHandler) Methods(c *gin.Context) {
	h.Success(c, h.settings.ListPaymentMethods())
}

// Schedules lists the payout schedules
func (h *PayoutSettingsHandler) Schedules(c *gin.Context) {
	h.Success(c, h.settings.ListSchedules())
}
