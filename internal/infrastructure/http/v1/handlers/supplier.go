package handlers

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// SupplierHandler serves the supplier catalog endpoints.
type SupplierHandler struct {
	*BaseHandler
	service *supplier.Service
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{BaseHandler: base, service: service}
}

// Create handles POST /suppliers.
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sup := supplier.New(req.Name)
	sup.Phone = req.Phone
	sup.Notes = req.Notes

	if err := h.service.Create(c.Request.Context(), sup); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sup.ID.String())
}

// Totals handles GET /suppliers/:id/totals.
func (h *SupplierHandler) Totals(c *gin.Context) {
	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	totals, err := h.service.Totals(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SupplierTotalsResponse{
		SupplierID:    supplierID.String(),
		TotalSupplied: totals.TotalSupplied.String(),
		TotalPaid:     totals.TotalPaid.String(),
		CurrentDebt:   totals.CurrentDebt.String(),
	})
}
