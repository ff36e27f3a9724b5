package handler

import (
	earningapp "github.com/affiliate/backend/internal/application/earning"
	referralapp "github.com/affiliate/backend/internal/application/referral"
	"github.com/gin-gonic/gin"
)

// ReferralHandler handles referral submission, status changes and timelines
type ReferralHandler struct {
	BaseHandler
	referrals *referralapp.ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referrals *referralapp.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// Submit godoc
//
//	@Summary	Submit a referral
//	@Tags		referrals
//	@Accept		json
//	@Produce	json
//	@Param		request	body		referralapp.SubmitReferralRequest	true	"Referral"
//	@Success	201		{object}	dto.Response
//	@Failure	400		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/referrals [post]
func (h *ReferralHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req referralapp.SubmitReferralRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ref, err := h.referrals.Submit(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ref)
}

// List godoc
//
//	@Summary	List referrals visible to the caller
//	@Tags		referrals
//	@Produce	json
//	@Param		search		query	string	false	"Client name, email, company or product"
//	@Param		status		query	string	false	"Status"
//	@Param		date_range	query	string	false	"today, thisWeek, thisMonth or last3Months"
//	@Success	200			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/referrals [get]
func (h *ReferralHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter referralapp.ReferralListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	refs, total, err := h.referrals.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, refs, total, filter.Page, filter.PageSize)
}

// Stats returns counts per status, commission totals and the conversion rate
func (h *ReferralHandler) Stats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter referralapp.ReferralListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	stats, err := h.referrals.Stats(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Get returns one referral
func (h *ReferralHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	ref, err := h.referrals.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ref)
}

// UpdateStatus godoc
//
//	@Summary		Change a referral's status
//	@Description	Converting a referral locks its commission and creates its earning.
//	@Tags			referrals
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int										true	"Referral ID"
//	@Param			request	body		referralapp.UpdateReferralStatusRequest	true	"New status"
//	@Success		200		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/referrals/{id}/status [patch]
func (h *ReferralHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req referralapp.UpdateReferralStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.referrals.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Timeline returns the referral's status history
func (h *ReferralHandler) Timeline(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	entries, err := h.referrals.Timeline(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// AddTimelineNote appends a note at the referral's current status
func (h *ReferralHandler) AddTimelineNote(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req referralapp.AddTimelineNoteRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	entry, err := h.referrals.AddTimelineNote(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// CreateEarning creates the earning of a converted referral that has none
func (h *ReferralHandler) CreateEarning(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	e, err := h.referrals.CreateEarning(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, earningapp.ToEarningResponse(e))
}
