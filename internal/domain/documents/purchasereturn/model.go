// Package purchasereturn provides returns of received goods to suppliers.
package purchasereturn

import (
	"context"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// RefundMethod determines how the supplier compensates the return.
type RefundMethod string

const (
	// RefundCash means the supplier refunds cash into the drawer.
	RefundCash RefundMethod = "cash"
	// RefundDebt means the refund reduces what is still owed on the purchase.
	RefundDebt RefundMethod = "debt"
)

// Return is a processed supplier return. Refund values use the unit cost the
// goods were originally purchased at, captured per line.
type Return struct {
	entity.Document

	// PurchaseID is the purchase the return is issued against.
	PurchaseID id.ID `db:"purchase_id" json:"purchaseId"`

	RefundMethod RefundMethod `db:"refund_method" json:"refundMethod"`

	RefundTotal types.Money `db:"refund_total" json:"refundTotal"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one returned item.
type Line struct {
	LineID   id.ID `db:"line_id" json:"lineId"`
	ReturnID id.ID `db:"return_id" json:"returnId"`
	LineNo   int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int64 `db:"quantity" json:"quantity"`

	UnitCost types.Money `db:"unit_cost" json:"unitCost"`
	Subtotal types.Money `db:"subtotal" json:"subtotal"`
}

// NewReturn creates a return shell against a purchase.
func NewReturn(branchID, createdBy string, purchaseID id.ID, method RefundMethod) *Return {
	return &Return{
		Document:     entity.NewDocument(branchID, createdBy),
		PurchaseID:   purchaseID,
		RefundMethod: method,
		Lines:        make([]Line, 0),
	}
}

// AddLine appends a returned item at its original purchase cost and
// recalculates the refund total.
func (r *Return) AddLine(productID id.ID, quantity int64, unitCost types.Money) {
	line := Line{
		LineID:    id.New(),
		ReturnID:  r.ID,
		LineNo:    len(r.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Subtotal:  types.LineSubtotal(unitCost, quantity),
	}
	r.Lines = append(r.Lines, line)

	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Subtotal)
	}
	r.RefundTotal = total
}

// Validate implements entity.Validatable.
func (r *Return) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.PurchaseID) {
		return apperror.NewValidation("purchase is required").
			WithDetail("field", "purchaseId")
	}
	if r.RefundMethod != RefundCash && r.RefundMethod != RefundDebt {
		return apperror.NewValidation("refund method must be cash or debt").
			WithDetail("field", "refundMethod")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for _, line := range r.Lines {
		if line.Quantity <= 0 {
			return apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("lineNo", line.LineNo)
		}
	}
	return nil
}
