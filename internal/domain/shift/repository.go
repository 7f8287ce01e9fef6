package shift

import (
	"context"

	"dukkan/internal/core/id"
)

// Repository defines storage operations for shifts.
type Repository interface {
	Create(ctx context.Context, s *Shift) error

	GetByID(ctx context.Context, shiftID id.ID) (*Shift, error)

	// GetOpenForUser returns the actor's open shift, or nil when none exists.
	GetOpenForUser(ctx context.Context, username string) (*Shift, error)

	// Update persists close-time fields with optimistic locking.
	Update(ctx context.Context, s *Shift) error
}
