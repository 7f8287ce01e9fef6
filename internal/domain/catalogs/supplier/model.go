// Package supplier provides the supplier catalog and its derived ledger totals.
package supplier

import (
	"context"
	"time"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/types"
)

// Supplier is a counterparty goods are purchased from.
type Supplier struct {
	entity.BaseEntity

	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// New creates a supplier.
func New(name string) *Supplier {
	return &Supplier{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Totals is a materialized view over the supplier's purchase, purchase-return
// and payment records. It is never stored: every read recomputes it from the
// underlying non-deleted rows, so no write path can make it drift.
type Totals struct {
	SupplierID string `db:"supplier_id" json:"supplierId"`

	// TotalSupplied = sum of purchases minus sum of purchase returns.
	TotalSupplied types.Money `db:"total_supplied" json:"totalSupplied"`

	// TotalPaid = sum of the live paid amount across non-deleted purchases.
	TotalPaid types.Money `db:"total_paid" json:"totalPaid"`

	// CurrentDebt = sum of max(0, remaining) across non-deleted purchases.
	CurrentDebt types.Money `db:"current_debt" json:"currentDebt"`
}

// TotalsFromSums derives the projection from the raw register sums. Cash
// refunds hand goods and money back, so they come off both supplied and paid;
// debt-method returns already lowered the purchase row's total and remaining
// and must not be subtracted again.
func TotalsFromSums(supplierID string, supplied, paid, debt, cashRefunded types.Money) Totals {
	return Totals{
		SupplierID:    supplierID,
		TotalSupplied: supplied.Sub(cashRefunded),
		TotalPaid:     paid.Sub(cashRefunded),
		CurrentDebt:   debt,
	}
}
