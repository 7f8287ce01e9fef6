package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/purchasereturn"
	"dukkan/internal/domain/documents/salesreturn"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// ReturnsHandler serves the customer and supplier return endpoints.
type ReturnsHandler struct {
	*BaseHandler
	salesReturns    *salesreturn.Service
	purchaseReturns *purchasereturn.Service
}

// NewReturnsHandler creates a returns handler.
func NewReturnsHandler(base *BaseHandler, salesReturns *salesreturn.Service, purchaseReturns *purchasereturn.Service) *ReturnsHandler {
	return &ReturnsHandler{
		BaseHandler:     base,
		salesReturns:    salesReturns,
		purchaseReturns: purchaseReturns,
	}
}

// ProcessSalesReturn handles POST /sales/:id/returns.
func (h *ReturnsHandler) ProcessSalesReturn(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProcessSalesReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]salesreturn.LineRequest, 0, len(req.Lines))
	for i, l := range req.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("lineNo", i+1))
			return
		}
		lines = append(lines, salesreturn.LineRequest{ProductID: productID, Quantity: l.Quantity})
	}

	ret, err := h.salesReturns.Process(c.Request.Context(), salesreturn.ProcessRequest{
		SaleID: saleID,
		Lines:  lines,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ret)
}

// ProcessPurchaseReturn handles POST /purchases/:id/returns.
func (h *ReturnsHandler) ProcessPurchaseReturn(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProcessPurchaseReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]purchasereturn.LineRequest, 0, len(req.Lines))
	for i, l := range req.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("lineNo", i+1))
			return
		}
		lines = append(lines, purchasereturn.LineRequest{ProductID: productID, Quantity: l.Quantity})
	}

	ret, err := h.purchaseReturns.Process(c.Request.Context(), purchasereturn.ProcessRequest{
		PurchaseID:   purchaseID,
		RefundMethod: purchasereturn.RefundMethod(req.RefundMethod),
		Lines:        lines,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ret)
}
