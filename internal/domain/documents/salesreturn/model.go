// Package salesreturn provides customer return records against prior sales.
package salesreturn

import (
	"context"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Return is a processed customer return. Refunds happen at the price the
// items were originally sold at, captured per line.
type Return struct {
	entity.Document

	// SaleID is the invoice the return is issued against.
	SaleID id.ID `db:"sale_id" json:"saleId"`

	// ShiftID ties the refund into drawer reconciliation.
	ShiftID id.ID `db:"shift_id" json:"shiftId"`

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

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
}

// NewReturn creates a return shell against a sale.
func NewReturn(branchID, createdBy string, saleID, shiftID id.ID) *Return {
	return &Return{
		Document: entity.NewDocument(branchID, createdBy),
		SaleID:   saleID,
		ShiftID:  shiftID,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a returned item at its original sale price and
// recalculates the refund total.
func (r *Return) AddLine(productID id.ID, quantity int64, unitPrice types.Money) {
	line := Line{
		LineID:    id.New(),
		ReturnID:  r.ID,
		LineNo:    len(r.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  types.LineSubtotal(unitPrice, quantity),
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

	if id.IsNil(r.SaleID) {
		return apperror.NewValidation("sale is required").
			WithDetail("field", "saleId")
	}
	if id.IsNil(r.ShiftID) {
		return apperror.NewValidation("shift is required").
			WithDetail("field", "shiftId")
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
