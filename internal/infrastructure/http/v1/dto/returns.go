package dto

// ReturnLineRequest is one line of a return request.
type ReturnLineRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

// ProcessSalesReturnRequest is the request body for POST /sales/:id/returns.
type ProcessSalesReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ProcessPurchaseReturnRequest is the request body for POST /purchases/:id/returns.
type ProcessPurchaseReturnRequest struct {
	RefundMethod string              `json:"refundMethod" binding:"required,oneof=cash debt"`
	Lines        []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}
