package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	actor := appctx.GetActor(c.Request.Context())
	if actor == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	retail, err := parseMoney("retailPrice", req.RetailPrice)
	if err != nil {
		h.Error(c, err)
		return
	}
	wholesale, err := parseMoney("wholesaleCost", req.WholesaleCost)
	if err != nil {
		h.Error(c, err)
		return
	}

	p := product.New(actor.BranchID, req.Name, wholesale, retail)
	p.Barcode = req.Barcode
	p.LowStockThreshold = req.LowStockThreshold
	if req.OfferPrice != nil {
		offer, err := parseMoney("offerPrice", *req.OfferPrice)
		if err != nil {
			h.Error(c, err)
			return
		}
		p.OfferPrice = &offer
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID.String())
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}
