package treasury

import (
	"context"
	"time"

	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// BalanceFilter scopes a drawer-balance query.
type BalanceFilter struct {
	BranchID string
	From     *time.Time
	To       *time.Time
}

// Repository defines operations for the drawer register.
// Logs are append-only; there is no update or delete.
type Repository interface {
	// Append inserts one drawer event (used inside ledger transactions).
	Append(ctx context.Context, log *Log) error

	// Balance returns the signed sum of logs matching the filter.
	Balance(ctx context.Context, filter BalanceFilter) (types.Money, error)

	// SumForShift returns the signed sum of a shift's logs restricted to the
	// given sources.
	SumForShift(ctx context.Context, shiftID id.ID, sources []Source) (types.Money, error)

	// ListByReference returns logs for an originating ledger record.
	ListByReference(ctx context.Context, referenceID id.ID) ([]Log, error)
}
