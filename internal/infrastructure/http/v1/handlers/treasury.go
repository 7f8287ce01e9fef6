package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// TreasuryHandler serves the drawer register endpoints.
type TreasuryHandler struct {
	*BaseHandler
	service *treasury.Service
}

// NewTreasuryHandler creates a treasury handler.
func NewTreasuryHandler(base *BaseHandler, service *treasury.Service) *TreasuryHandler {
	return &TreasuryHandler{BaseHandler: base, service: service}
}

// Balance handles GET /treasury/balance. Optional from/to query parameters
// (RFC 3339) scope the window; branchId defaults to the actor's branch.
func (h *TreasuryHandler) Balance(c *gin.Context) {
	filter := treasury.BalanceFilter{BranchID: c.Query("branchId")}
	if filter.BranchID == "" {
		if actor := appctx.GetActor(c.Request.Context()); actor != nil {
			filter.BranchID = actor.BranchID
		}
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid timestamp").WithDetail("field", "from"))
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid timestamp").WithDetail("field", "to"))
			return
		}
		filter.To = &t
	}

	balance, err := h.service.Balance(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.TreasuryBalanceResponse{
		BranchID: filter.BranchID,
		Balance:  balance.String(),
	})
}
