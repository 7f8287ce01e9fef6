package dto

import "dukkan/internal/domain/documents/sale"

// SaleLineRequest is one line of a sale request.
type SaleLineRequest struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Quantity  int64   `json:"quantity" binding:"required"`
	UnitPrice *string `json:"unitPrice,omitempty"`
}

// ProcessSaleRequest is the request body for POST /sales.
type ProcessSaleRequest struct {
	CustomerName  string            `json:"customerName,omitempty"`
	DiscountValue string            `json:"discountValue,omitempty"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DeleteSaleRequest is the request body for DELETE /sales/:id.
type DeleteSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SaleResponse is the processed invoice.
type SaleResponse struct {
	*sale.Invoice
}
