// Package product provides the product catalog and the stock ledger over it.
package product

import (
	"context"
	"time"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/types"
)

// Product is a sellable item. Stock is the only field mutated in place, and
// only via atomic ledger operations; it is never negative.
type Product struct {
	entity.BaseEntity

	Name    string `db:"name" json:"name"`
	Barcode string `db:"barcode" json:"barcode,omitempty"`

	// Stock in integer retail units.
	Stock int64 `db:"stock" json:"stock"`

	WholesaleCost types.Money `db:"wholesale_cost" json:"wholesaleCost"`
	RetailPrice   types.Money `db:"retail_price" json:"retailPrice"`

	// OfferPrice temporarily overrides RetailPrice when set.
	OfferPrice *types.Money `db:"offer_price" json:"offerPrice,omitempty"`

	LowStockThreshold int64 `db:"low_stock_threshold" json:"lowStockThreshold"`

	BranchID string `db:"branch_id" json:"branchId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// New creates a product for a branch.
func New(branchID, name string, wholesaleCost, retailPrice types.Money) *Product {
	return &Product{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          name,
		WholesaleCost: wholesaleCost,
		RetailPrice:   retailPrice,
		BranchID:      branchID,
		CreatedAt:     time.Now().UTC(),
	}
}

// SellingPrice returns the offer price when set, the retail price otherwise.
func (p *Product) SellingPrice() types.Money {
	if p.OfferPrice != nil {
		return *p.OfferPrice
	}
	return p.RetailPrice
}

// IsLowStock reports whether stock is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold > 0 && p.Stock <= p.LowStockThreshold
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if p.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}
	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	if p.RetailPrice.IsNegative() || p.WholesaleCost.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}
	if p.OfferPrice != nil && p.OfferPrice.IsNegative() {
		return apperror.NewValidation("offer price cannot be negative").
			WithDetail("field", "offerPrice")
	}
	return nil
}
