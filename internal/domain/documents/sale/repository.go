package sale

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for sale invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error

	SaveLines(ctx context.Context, invoiceID id.ID, lines []Line) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	GetLines(ctx context.Context, invoiceID id.ID) ([]Line, error)

	// MarkDeleted flips the soft-delete flag with its metadata, using
	// optimistic locking on the version column.
	MarkDeleted(ctx context.Context, inv *Invoice) error
}
