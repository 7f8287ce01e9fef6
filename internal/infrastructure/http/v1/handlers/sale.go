package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/sale"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sale endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Process handles POST /sales.
func (h *SaleHandler) Process(c *gin.Context) {
	var req dto.ProcessSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, err := parseMoney("discountValue", req.DiscountValue)
	if err != nil {
		h.Error(c, err)
		return
	}

	lines := make([]sale.LineRequest, 0, len(req.Lines))
	for i, l := range req.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("lineNo", i+1))
			return
		}
		line := sale.LineRequest{ProductID: productID, Quantity: l.Quantity}
		if l.UnitPrice != nil {
			price, err := parseMoney("unitPrice", *l.UnitPrice)
			if err != nil {
				h.Error(c, err)
				return
			}
			line.UnitPrice = &price
		}
		lines = append(lines, line)
	}

	inv, err := h.service.Process(c.Request.Context(), sale.ProcessRequest{
		CustomerName:  req.CustomerName,
		DiscountValue: discount,
		Lines:         lines,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Delete handles DELETE /sales/:id.
func (h *SaleHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.DeleteSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.Delete(c.Request.Context(), invoiceID, req.Reason); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
