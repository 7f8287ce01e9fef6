package purchase

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for purchase records.
type Repository interface {
	Create(ctx context.Context, r *Record) error

	SaveLines(ctx context.Context, purchaseID id.ID, lines []Line) error

	GetByID(ctx context.Context, purchaseID id.ID) (*Record, error)

	// GetForUpdate loads the record with a row lock so concurrent settlements
	// over the same purchase serialize.
	GetForUpdate(ctx context.Context, purchaseID id.ID) (*Record, error)

	GetLines(ctx context.Context, purchaseID id.ID) ([]Line, error)

	// ListUnpaidBySupplier returns non-deleted purchases with remaining > 0,
	// oldest first (created_at, then id), locking the rows.
	ListUnpaidBySupplier(ctx context.Context, supplierID id.ID) ([]Record, error)

	// UpdatePayment persists paid, remaining and status with optimistic locking.
	UpdatePayment(ctx context.Context, r *Record) error

	// MarkDeleted flips the soft-delete flag with its metadata.
	MarkDeleted(ctx context.Context, r *Record) error
}
