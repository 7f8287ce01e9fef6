package supplier

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for suppliers.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error

	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)

	Exists(ctx context.Context, supplierID id.ID) (bool, error)

	// ComputeTotals recomputes the supplier aggregate from non-deleted
	// purchase, purchase-return and payment rows in a single query.
	ComputeTotals(ctx context.Context, supplierID id.ID) (Totals, error)
}
