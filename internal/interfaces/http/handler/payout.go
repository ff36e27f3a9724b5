package handler

import (
	"strings"

	payoutapp "github.com/affiliate/backend/internal/application/payout"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader deduplicates payout creation retries
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// PayoutHandler handles payouts and their status transitions
type PayoutHandler struct {
	BaseHandler
	payouts *payoutapp.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(payouts *payoutapp.PayoutService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// Create godoc
//
//	@Summary		Request a payout
//	@Description	Pays out the available earnings of the listed converted referrals.
//	@Description	A repeated Idempotency-Key is rejected with 409.
//	@Tags			payouts
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Retry key"
//	@Param			request			body		payoutapp.CreatePayoutRequest	true	"Payout"
//	@Success		201				{object}	dto.Response
//	@Failure		409				{object}	dto.Response
//	@Failure		422				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/payouts [post]
func (h *PayoutHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req payoutapp.CreatePayoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	p, err := h.payouts.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// List returns payouts visible to the caller
func (h *PayoutHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter payoutapp.PayoutListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	payouts, total, err := h.payouts.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payouts, total, filter.Page, filter.PageSize)
}

// Summary totals payouts by status
func (h *PayoutHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter payoutapp.PayoutListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	summary, err := h.payouts.Summary(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Get returns one payout with its included referrals
func (h *PayoutHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	p, err := h.payouts.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Timeline returns the payout's status history
func (h *PayoutHandler) Timeline(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	entries, err := h.payouts.Timeline(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Process hands a pending payout to its payment processor
func (h *PayoutHandler) Process(c *gin.Context) {
	h.transition(c, func(actor shared.Actor, id string) (*payoutapp.PayoutResponse, error) {
		return h.payouts.Process(c.Request.Context(), actor, id)
	})
}

// Complete settles a processing payout and marks its earnings paid
func (h *PayoutHandler) Complete(c *gin.Context) {
	var req payoutapp.CompletePayoutRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(actor shared.Actor, id string) (*payoutapp.PayoutResponse, error) {
		return h.payouts.Complete(c.Request.Context(), actor, id, req)
	})
}

// Fail marks a payout failed and releases its earnings
func (h *PayoutHandler) Fail(c *gin.Context) {
	var req payoutapp.FailPayoutRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(actor shared.Actor, id string) (*payoutapp.PayoutResponse, error) {
		return h.payouts.Fail(c.Request.Context(), actor, id, req)
	})
}

// Cancel cancels a payout and releases its earnings
func (h *PayoutHandler) Cancel(c *gin.Context) {
	var req payoutapp.CancelPayoutRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(actor shared.Actor, id string) (*payoutapp.PayoutResponse, error) {
		return h.payouts.Cancel(c.Request.Context(), actor, id, req)
	})
}

func (h *PayoutHandler) transition(c *gin.Context, apply func(shared.Actor, string) (*payoutapp.PayoutResponse, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	p, err := apply(actor, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
