package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/settlement"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// PaymentHandler serves the supplier payment endpoints.
type PaymentHandler struct {
	*BaseHandler
	service *settlement.Service
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(base *BaseHandler, service *settlement.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Record handles POST /supplier-payments.
func (h *PaymentHandler) Record(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplierID, err := id.Parse(req.SupplierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid supplier id").WithDetail("field", "supplierId"))
		return
	}
	amount, err := parseMoney("amount", req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}

	recordReq := settlement.RecordRequest{
		SupplierID: supplierID,
		Amount:     amount,
		Notes:      req.Notes,
	}
	if req.PurchaseID != nil {
		purchaseID, err := id.Parse(*req.PurchaseID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid purchase id").WithDetail("field", "purchaseId"))
			return
		}
		recordReq.PurchaseID = &purchaseID
	}

	payment, err := h.service.Record(c.Request.Context(), recordReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, payment)
}

// Get handles GET /supplier-payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	payment, err := h.service.Get(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, payment)
}
