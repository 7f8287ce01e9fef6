package settlement

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for supplier payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error

	SaveAllocations(ctx context.Context, paymentID id.ID, allocations []Allocation) error

	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)

	GetAllocations(ctx context.Context, paymentID id.ID) ([]Allocation, error)

	// ListBySupplier returns non-deleted payments for a supplier, newest first.
	ListBySupplier(ctx context.Context, supplierID id.ID) ([]Payment, error)
}
