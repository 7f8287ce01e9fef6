package dto

// RecordPaymentRequest is the request body for POST /supplier-payments.
// An omitted purchaseId means oldest-first allocation across unpaid purchases.
type RecordPaymentRequest struct {
	SupplierID string  `json:"supplierId" binding:"required,uuid"`
	PurchaseID *string `json:"purchaseId,omitempty"`
	Amount     string  `json:"amount" binding:"required"`
	Notes      string  `json:"notes,omitempty"`
}
