package handler

import (
	earningapp "github.com/affiliate/backend/internal/application/earning"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// EarningHandler handles earnings and their status transitions
type EarningHandler struct {
	BaseHandler
	earnings *earningapp.EarningService
}

// NewEarningHandler creates a new EarningHandler
func NewEarningHandler(earnings *earningapp.EarningService) *EarningHandler {
	return &EarningHandler{earnings: earnings}
}

// Create godoc
//
//	@Summary	Record a bonus or promotion earning
//	@Tags		earnings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		earningapp.CreateEarningRequest	true	"Earning"
//	@Success	201		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/earnings [post]
func (h *EarningHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req earningapp.CreateEarningRequest
	if !h.bindJSON(c, &req) {
		return
	}
	e, err := h.earnings.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, e)
}

// List returns earnings visible to the caller
func (h *EarningHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter earningapp.EarningListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	earnings, total, err := h.earnings.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, earnings, total, filter.Page, filter.PageSize)
}

// Summary totals earnings by bucket
func (h *EarningHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter earningapp.EarningListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	summary, err := h.earnings.Summary(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Stats groups earnings by day, week or month
func (h *EarningHandler) Stats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req earningapp.StatsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	stats, err := h.earnings.Stats(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Get returns one earning
func (h *EarningHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	e, err := h.earnings.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}

// Approve moves a pending earning to approved
func (h *EarningHandler) Approve(c *gin.Context) {
	h.transition(c, func(actor shared.Actor, id int64) (*earningapp.EarningResponse, error) {
		return h.earnings.Approve(c.Request.Context(), actor, id)
	})
}

// Reject rejects a pending earning with an optional reason
func (h *EarningHandler) Reject(c *gin.Context) {
	var req earningapp.ReasonRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(actor shared.Actor, id int64) (*earningapp.EarningResponse, error) {
		return h.earnings.Reject(c.Request.Context(), actor, id, req)
	})
}

// MarkAvailable releases an earning for payout
func (h *EarningHandler) MarkAvailable(c *gin.Context) {
	h.transition(c, func(actor shared.Actor, id int64) (*earningapp.EarningResponse, error) {
		return h.earnings.MarkAvailable(c.Request.Context(), actor, id)
	})
}

// MarkPaid settles an earning outside the payout flow
func (h *EarningHandler) MarkPaid(c *gin.Context) {
	h.transition(c, func(actor shared.Actor, id int64) (*earningapp.EarningResponse, error) {
		return h.earnings.MarkPaid(c.Request.Context(), actor, id)
	})
}

// Cancel cancels an earning with an optional reason
func (h *EarningHandler) Cancel(c *gin.Context) {
	var req earningapp.ReasonRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(actor shared.Actor, id int64) (*earningapp.EarningResponse, error) {
		return h.earnings.Cancel(c.Request.Context(), actor, id, req)
	})
}

func (h *EarningHandler) transition(c *gin.Context, apply func(shared.Actor, int64) (*earningapp.EarningResponse, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	e, err := apply(actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}
