package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the purchase endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Process handles POST /purchases.
func (h *PurchaseHandler) Process(c *gin.Context) {
	var req dto.ProcessPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplierID, err := id.Parse(req.SupplierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid supplier id").WithDetail("field", "supplierId"))
		return
	}
	paid, err := parseMoney("paid", req.Paid)
	if err != nil {
		h.Error(c, err)
		return
	}

	lines := make([]purchase.LineRequest, 0, len(req.Lines))
	for i, l := range req.Lines {
		cost, err := parseMoney("unitCost", l.UnitCost)
		if err != nil {
			h.Error(c, err)
			return
		}
		line := purchase.LineRequest{Quantity: l.Quantity, UnitCost: cost}

		if l.ProductID != "" {
			productID, err := id.Parse(l.ProductID)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid product id").WithDetail("lineNo", i+1))
				return
			}
			line.ProductID = productID
		}
		if l.NewProduct != nil {
			retail, err := parseMoney("retailPrice", l.NewProduct.RetailPrice)
			if err != nil {
				h.Error(c, err)
				return
			}
			line.NewProduct = &purchase.NewProduct{
				Name:              l.NewProduct.Name,
				Barcode:           l.NewProduct.Barcode,
				RetailPrice:       retail,
				LowStockThreshold: l.NewProduct.LowStockThreshold,
			}
		}
		lines = append(lines, line)
	}

	rec, err := h.service.Process(c.Request.Context(), purchase.ProcessRequest{
		SupplierID: supplierID,
		Paid:       paid,
		Lines:      lines,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.service.Get(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.DeletePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.Delete(c.Request.Context(), purchaseID, req.Reason); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
