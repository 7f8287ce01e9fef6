// Package treasury provides the cash-drawer accumulation register.
//
// The drawer balance for any branch and time window is the signed sum of its
// logs. It is never stored as a separate mutable counter.
package treasury

import (
	"context"
	"time"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Direction of a drawer movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Source identifies the ledger event a log originates from.
type Source string

const (
	SourceSale            Source = "sale"
	SourceSaleVoid        Source = "sale_void"
	SourceSalesReturn     Source = "sales_return"
	SourcePurchase        Source = "purchase"
	SourcePurchaseVoid    Source = "purchase_void"
	SourcePurchaseReturn  Source = "purchase_return"
	SourceSupplierPayment Source = "supplier_payment"
	SourceExpense         Source = "expense"
)

// ShiftSources are the sources that feed a shift's expected drawer balance.
var ShiftSources = []Source{SourceSale, SourceSaleVoid, SourceSalesReturn}

// Log is one append-only drawer event.
type Log struct {
	ID id.ID `db:"id" json:"id"`

	Direction Direction `db:"direction" json:"direction"`
	Source    Source    `db:"source" json:"source"`

	// ReferenceID points at the originating ledger record.
	ReferenceID id.ID `db:"reference_id" json:"referenceId"`

	Amount types.Money `db:"amount" json:"amount"`

	BranchID string `db:"branch_id" json:"branchId"`

	// ShiftID tags drawer events that belong to an open shift.
	ShiftID *id.ID `db:"shift_id" json:"shiftId,omitempty"`

	Actor string `db:"actor" json:"actor"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLog creates a drawer event with a generated id and server timestamp.
func NewLog(direction Direction, source Source, referenceID id.ID, amount types.Money, branchID, actor string) *Log {
	return &Log{
		ID:          id.New(),
		Direction:   direction,
		Source:      source,
		ReferenceID: referenceID,
		Amount:      amount,
		BranchID:    branchID,
		Actor:       actor,
		CreatedAt:   time.Now().UTC(),
	}
}

// WithShift tags the log with a shift.
func (l *Log) WithShift(shiftID id.ID) *Log {
	l.ShiftID = &shiftID
	return l
}

// SignedAmount returns the amount with `out` negated.
func (l *Log) SignedAmount() types.Money {
	if l.Direction == DirectionOut {
		return l.Amount.Neg()
	}
	return l.Amount
}

// Validate implements entity.Validatable.
func (l *Log) Validate(ctx context.Context) error {
	if l.Direction != DirectionIn && l.Direction != DirectionOut {
		return apperror.NewValidation("direction must be in or out").
			WithDetail("field", "direction")
	}
	if !l.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if l.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}
	return nil
}
