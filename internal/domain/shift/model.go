// Package shift provides cashier work sessions and drawer reconciliation.
package shift

import (
	"context"
	"time"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Status of a shift. The state machine is open -> closed, terminal.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Shift is a bounded work session grouping one cashier's drawer activity.
type Shift struct {
	ID id.ID `db:"id" json:"id"`

	BranchID string `db:"branch_id" json:"branchId"`
	Username string `db:"username" json:"username"`

	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`

	Status Status `db:"status" json:"status"`

	OpenedAt time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// Close-time snapshot. Difference is recorded once and never
	// recalculated, even if historical records are later corrected.
	ExpectedBalance *types.Money `db:"expected_balance" json:"expectedBalance,omitempty"`
	ActualBalance   *types.Money `db:"actual_balance" json:"actualBalance,omitempty"`
	Difference      *types.Money `db:"difference" json:"difference,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`

	Version int `db:"version" json:"version"`
}

// Open creates an open shift for an actor.
func Open(branchID, username string, openingBalance types.Money) *Shift {
	return &Shift{
		ID:             id.New(),
		BranchID:       branchID,
		Username:       username,
		OpeningBalance: openingBalance,
		Status:         StatusOpen,
		OpenedAt:       time.Now().UTC(),
		Version:        1,
	}
}

// IsOpen reports whether the shift accepts drawer activity.
func (s *Shift) IsOpen() bool {
	return s.Status == StatusOpen
}

// Close records the reconciliation snapshot and seals the shift.
func (s *Shift) Close(expected, actual types.Money, notes string) error {
	if !s.IsOpen() {
		return apperror.NewConflict("shift is already closed").
			WithDetail("shift_id", s.ID.String())
	}

	now := time.Now().UTC()
	diff := actual.Sub(expected)

	s.Status = StatusClosed
	s.ClosedAt = &now
	s.ExpectedBalance = &expected
	s.ActualBalance = &actual
	s.Difference = &diff
	s.Notes = notes
	s.Version++

	return nil
}

// Validate implements entity.Validatable.
func (s *Shift) Validate(ctx context.Context) error {
	if s.Username == "" {
		return apperror.NewValidation("username is required").
			WithDetail("field", "username")
	}
	if s.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}
	if s.OpeningBalance.IsNegative() {
		return apperror.NewValidation("opening balance cannot be negative").
			WithDetail("field", "openingBalance")
	}
	return nil
}
