package dto

// CreateSupplierRequest is the request body for POST /suppliers.
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// SupplierTotalsResponse carries the derived supplier ledger aggregates.
type SupplierTotalsResponse struct {
	SupplierID    string `json:"supplierId"`
	TotalSupplied string `json:"totalSupplied"`
	TotalPaid     string `json:"totalPaid"`
	CurrentDebt   string `json:"currentDebt"`
}
