package salesreturn

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for customer returns.
type Repository interface {
	Create(ctx context.Context, r *Return) error

	SaveLines(ctx context.Context, returnID id.ID, lines []Line) error

	GetByID(ctx context.Context, returnID id.ID) (*Return, error)

	GetLines(ctx context.Context, returnID id.ID) ([]Line, error)

	// ReturnedQuantities sums previously returned quantities per product for
	// a sale, across non-deleted returns. Feeds the per-product return cap.
	ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error)
}
