package handler

import (
	partnerapp "github.com/affiliate/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// PartnerHandler handles partner profile endpoints
type PartnerHandler struct {
	BaseHandler
	profiles *partnerapp.ProfileService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(profiles *partnerapp.ProfileService) *PartnerHandler {
	return &PartnerHandler{profiles: profiles}
}

// Register godoc
//
//	@Summary	Create the caller's partner profile
//	@Tags		partners
//	@Accept		json
//	@Produce	json
//	@Param		request	body		partnerapp.RegisterPartnerRequest	true	"Profile"
//	@Success	201		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/partners [post]
func (h *PartnerHandler) Register(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.RegisterPartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.Register(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, profile)
}

// Me returns the caller's own profile
func (h *PartnerHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetByUser(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Get returns one profile
func (h *PartnerHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	profile, err := h.profiles.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// List returns all partner profiles
func (h *PartnerHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter partnerapp.PartnerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	profiles, total, err := h.profiles.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, profiles, total, filter.Page, filter.PageSize)
}

// UpdateStatus activates, deactivates or suspends a partner
func (h *PartnerHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdatePartnerStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
