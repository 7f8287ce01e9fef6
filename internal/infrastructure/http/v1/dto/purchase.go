package dto

// NewProductRequest defines a product created inline by a purchase line.
type NewProductRequest struct {
	Name              string `json:"name" binding:"required"`
	Barcode           string `json:"barcode,omitempty"`
	RetailPrice       string `json:"retailPrice" binding:"required"`
	LowStockThreshold int64  `json:"lowStockThreshold,omitempty"`
}

// PurchaseLineRequest is one line of a purchase request.
// Exactly one of productId and newProduct must be set.
type PurchaseLineRequest struct {
	ProductID  string             `json:"productId,omitempty"`
	NewProduct *NewProductRequest `json:"newProduct,omitempty"`
	Quantity   int64              `json:"quantity" binding:"required"`
	UnitCost   string             `json:"unitCost" binding:"required"`
}

// ProcessPurchaseRequest is the request body for POST /purchases.
type ProcessPurchaseRequest struct {
	SupplierID string                `json:"supplierId" binding:"required,uuid"`
	Paid       string                `json:"paid,omitempty"`
	Lines      []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DeletePurchaseRequest is the request body for DELETE /purchases/:id.
type DeletePurchaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}
