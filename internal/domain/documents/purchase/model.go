// Package purchase provides supplier purchase records and their processor.
package purchase

import (
	"context"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Status of a purchase with respect to payment.
type Status string

const (
	// StatusCash means the purchase was fully paid at receipt.
	StatusCash Status = "cash"
	// StatusCredit means part or all of the total is still owed.
	StatusCredit Status = "credit"
	// StatusSettled means a credit purchase was later paid off.
	StatusSettled Status = "settled"
)

// Record is a received supplier delivery. Paid and Remaining move only
// through settlement; everything else is immutable after processing.
type Record struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Total     types.Money `db:"total" json:"total"`
	Paid      types.Money `db:"paid" json:"paid"`
	Remaining types.Money `db:"remaining" json:"remaining"`

	Status Status `db:"status" json:"status"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received item.
type Line struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	PurchaseID id.ID `db:"purchase_id" json:"purchaseId"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int64 `db:"quantity" json:"quantity"`

	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
	Subtotal types.Money `db:"subtotal" json:"subtotal"`
}

// NewRecord creates a purchase shell for a supplier.
func NewRecord(branchID, createdBy string, supplierID id.ID) *Record {
	return &Record{
		Document:   entity.NewDocument(branchID, createdBy),
		SupplierID: supplierID,
		Lines:      make([]Line, 0),
	}
}

// AddLine appends a received item and recalculates the total.
func (r *Record) AddLine(productID id.ID, quantity int64, unitCost types.Money) {
	line := Line{
		LineID:     id.New(),
		PurchaseID: r.ID,
		LineNo:     len(r.Lines) + 1,
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Subtotal:   types.LineSubtotal(unitCost, quantity),
	}
	r.Lines = append(r.Lines, line)

	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Subtotal)
	}
	r.Total = total
}

// SetInitialPayment records the amount paid at receipt and derives status.
// Paying more than the total is rejected.
func (r *Record) SetInitialPayment(paid types.Money) error {
	if paid.IsNegative() {
		return apperror.NewValidation("paid amount cannot be negative").
			WithDetail("field", "paid")
	}
	if paid.GreaterThan(r.Total) {
		return apperror.NewOverpayment("paid amount exceeds purchase total").
			WithDetail("total", r.Total).
			WithDetail("paid", paid)
	}

	r.Paid = paid
	r.Remaining = r.Total.Sub(paid)
	if r.Remaining.IsZero() {
		r.Status = StatusCash
	} else {
		r.Status = StatusCredit
	}
	return nil
}

// ApplyPayment settles part of the remaining debt. Amounts beyond the
// remaining debt are rejected; the record is left untouched on error.
func (r *Record) ApplyPayment(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	if amount.GreaterThan(r.Remaining) {
		return apperror.NewOverpayment("payment exceeds remaining debt").
			WithDetail("remaining", r.Remaining).
			WithDetail("amount", amount)
	}

	r.Paid = r.Paid.Add(amount)
	r.Remaining = r.Remaining.Sub(amount)
	if r.Remaining.IsZero() && r.Status == StatusCredit {
		r.Status = StatusSettled
	}
	r.Version++
	return nil
}

// ReduceDebt lowers the remaining debt without counting the amount as paid
// cash. Used by debt-method purchase returns. The reduction is floored at the
// remaining debt; amounts beyond it are rejected by the caller.
func (r *Record) ReduceDebt(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("reduction amount must be positive").
			WithDetail("field", "amount")
	}
	if amount.GreaterThan(r.Remaining) {
		return apperror.NewOverpayment("reduction exceeds remaining debt").
			WithDetail("remaining", r.Remaining).
			WithDetail("amount", amount)
	}

	r.Remaining = r.Remaining.Sub(amount)
	r.Total = r.Total.Sub(amount)
	if r.Remaining.IsZero() && r.Status == StatusCredit {
		r.Status = StatusSettled
	}
	r.Version++
	return nil
}

// ReceivedQuantities returns per-product received quantities across lines.
func (r *Record) ReceivedQuantities() map[id.ID]int64 {
	out := make(map[id.ID]int64, len(r.Lines))
	for _, line := range r.Lines {
		out[line.ProductID] += line.Quantity
	}
	return out
}

// UnitCostFor returns the unit cost a product was received at.
func (r *Record) UnitCostFor(productID id.ID) (types.Money, bool) {
	for _, line := range r.Lines {
		if line.ProductID == productID {
			return line.UnitCost, true
		}
	}
	return types.Zero(), false
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for _, line := range r.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("lineNo", line.LineNo)
		}
		if line.Quantity <= 0 {
			return apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("lineNo", line.LineNo)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("lineNo", line.LineNo)
		}
	}

	if r.Paid.IsNegative() || r.Remaining.IsNegative() {
		return apperror.NewValidation("paid and remaining cannot be negative")
	}

	return nil
}
