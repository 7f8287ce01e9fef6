package entity

import (
	"context"
	"time"

	"dukkan/internal/core/apperror"
)

// Document is the base type for ledger records (invoices, purchases, returns,
// payments). Documents are created once by a processor and are immutable
// afterwards except for the soft-delete flag and its metadata.
type Document struct {
	BaseEntity

	// Number is the human-facing document number (server-assigned, sequential per type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document (server-assigned)
	Date time.Time `db:"date" json:"date"`

	// BranchID is the owning branch
	BranchID string `db:"branch_id" json:"branchId"`

	// CreatedBy is the username of the actor that produced the record
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`

	// CreatedAt is the server timestamp of persistence
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewDocument creates a new Document with generated ID and server timestamps.
func NewDocument(branchID, createdBy string) Document {
	now := time.Now().UTC()
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       now,
		BranchID:   branchID,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanDelete checks that the record is not already soft-deleted.
func (d *Document) CanDelete() error {
	if d.DeletionMark {
		return apperror.NewConflict("record is already deleted").
			WithDetail("document_id", d.ID.String())
	}
	return nil
}
