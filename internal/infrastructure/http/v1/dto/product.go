package dto

// CreateProductRequest is the request body for POST /products.
type CreateProductRequest struct {
	Name              string  `json:"name" binding:"required"`
	Barcode           string  `json:"barcode,omitempty"`
	RetailPrice       string  `json:"retailPrice" binding:"required"`
	WholesaleCost     string  `json:"wholesaleCost,omitempty"`
	OfferPrice        *string `json:"offerPrice,omitempty"`
	LowStockThreshold int64   `json:"lowStockThreshold,omitempty"`
}
