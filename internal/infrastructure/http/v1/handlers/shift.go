package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/domain/shift"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// ShiftHandler serves the shift lifecycle endpoints.
type ShiftHandler struct {
	*BaseHandler
	service *shift.Service
}

// NewShiftHandler creates a shift handler.
func NewShiftHandler(base *BaseHandler, service *shift.Service) *ShiftHandler {
	return &ShiftHandler{BaseHandler: base, service: service}
}

// Open handles POST /shifts/open.
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}
	opening, err := parseMoney("openingBalance", req.OpeningBalance)
	if err != nil {
		h.Error(c, err)
		return
	}

	sh, err := h.service.Open(c.Request.Context(), opening)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sh)
}

// Current handles GET /shifts/current. Responds 200 with null when the actor
// has no open shift.
func (h *ShiftHandler) Current(c *gin.Context) {
	sh, err := h.service.CurrentForActor(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sh)
}

// Close handles POST /shifts/:id/close.
func (h *ShiftHandler) Close(c *gin.Context) {
	shiftID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actual, err := parseMoney("actualBalance", req.ActualBalance)
	if err != nil {
		h.Error(c, err)
		return
	}

	sh, err := h.service.Close(c.Request.Context(), shiftID, actual, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sh)
}
