package entity

import (
	"context"
	"time"

	"dukkan/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all entities.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// DeletionMark indicates soft-deleted entity. Ledger records are never
	// hard-deleted in normal operation; an archival snapshot is retained.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Deletion metadata, set together with DeletionMark.
	DeletedBy     string     `db:"deleted_by" json:"deletedBy,omitempty"`
	DeletedReason string     `db:"deleted_reason" json:"deletedReason,omitempty"`
	DeletedAt     *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch increments version (for optimistic locking).
func (b *BaseEntity) Touch() {
	b.Version++
}

// MarkDeleted sets the deletion mark with actor and reason.
func (b *BaseEntity) MarkDeleted(actor, reason string) {
	now := time.Now().UTC()
	b.DeletionMark = true
	b.DeletedBy = actor
	b.DeletedReason = reason
	b.DeletedAt = &now
}
