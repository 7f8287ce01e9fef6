package product

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for products and their stock.
//
// AdjustStock is the single write path for stock: one conditional UPDATE that
// the store serializes with a row-level lock, so two concurrent deductions of
// the last unit cannot both succeed.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetForUpdate loads the product with a row lock, for cost snapshots
	// inside a ledger transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	// AdjustStock applies a signed delta. A deduction that would make stock
	// negative fails with an insufficient-stock error naming the product and
	// leaves the row untouched, aborting the enclosing transaction.
	AdjustStock(ctx context.Context, productID id.ID, delta int64) error

	// ListLowStock returns non-deleted products at or below their threshold.
	ListLowStock(ctx context.Context, branchID string) ([]Product, error)

	Exists(ctx context.Context, productID id.ID) (bool, error)
}
