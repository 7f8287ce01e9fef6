// Package sale provides the sale invoice and its transaction processor.
package sale

import (
	"context"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Invoice is a persisted sale. Created once by the processor, immutable
// afterwards except for soft delete.
type Invoice struct {
	entity.Document

	CustomerName string `db:"customer_name" json:"customerName,omitempty"`

	// ShiftID ties the sale into drawer reconciliation.
	ShiftID id.ID `db:"shift_id" json:"shiftId"`

	TotalBeforeDiscount types.Money `db:"total_before_discount" json:"totalBeforeDiscount"`
	DiscountValue       types.Money `db:"discount_value" json:"discountValue"`
	NetTotal            types.Money `db:"net_total" json:"netTotal"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one sold item with a cost snapshot taken at sale time.
type Line struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`
	LineNo    int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int64 `db:"quantity" json:"quantity"`

	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	CostAtSale types.Money `db:"cost_at_sale" json:"costAtSale"`
	Subtotal   types.Money `db:"subtotal" json:"subtotal"`
}

// NewInvoice creates an invoice shell for a shift.
func NewInvoice(branchID, createdBy string, shiftID id.ID) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(branchID, createdBy),
		ShiftID:  shiftID,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a sold item and recalculates totals.
func (inv *Invoice) AddLine(productID id.ID, quantity int64, unitPrice, costAtSale types.Money) {
	line := Line{
		LineID:     id.New(),
		InvoiceID:  inv.ID,
		LineNo:     len(inv.Lines) + 1,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		CostAtSale: costAtSale,
		Subtotal:   types.LineSubtotal(unitPrice, quantity),
	}
	inv.Lines = append(inv.Lines, line)
	inv.recalculateTotals()
}

// ApplyDiscount sets the discount and recalculates the net total.
func (inv *Invoice) ApplyDiscount(discount types.Money) {
	inv.DiscountValue = discount
	inv.NetTotal = inv.TotalBeforeDiscount.Sub(inv.DiscountValue)
}

// recalculateTotals keeps gross = sum of line subtotals and
// net = gross - discount.
func (inv *Invoice) recalculateTotals() {
	gross := types.Zero()
	for _, line := range inv.Lines {
		gross = gross.Add(line.Subtotal)
	}
	inv.TotalBeforeDiscount = gross
	inv.NetTotal = gross.Sub(inv.DiscountValue)
}

// SoldQuantities returns per-product sold quantities across lines.
func (inv *Invoice) SoldQuantities() map[id.ID]int64 {
	out := make(map[id.ID]int64, len(inv.Lines))
	for _, line := range inv.Lines {
		out[line.ProductID] += line.Quantity
	}
	return out
}

// UnitPriceFor returns the unit price a product was sold at.
func (inv *Invoice) UnitPriceFor(productID id.ID) (types.Money, bool) {
	for _, line := range inv.Lines {
		if line.ProductID == productID {
			return line.UnitPrice, true
		}
	}
	return types.Zero(), false
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.ShiftID) {
		return apperror.NewValidation("shift is required").
			WithDetail("field", "shiftId")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]struct{}, len(inv.Lines))
	for _, line := range inv.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("lineNo", line.LineNo)
		}
		if line.Quantity <= 0 {
			return apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("lineNo", line.LineNo)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("lineNo", line.LineNo)
		}
		// Duplicate product lines would make UnitPriceFor ambiguous when a
		// return refunds at the original sale price.
		if _, dup := seen[line.ProductID]; dup {
			return apperror.NewValidation("product appears on more than one line").
				WithDetail("lineNo", line.LineNo)
		}
		seen[line.ProductID] = struct{}{}
	}

	if inv.DiscountValue.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discountValue")
	}
	if inv.DiscountValue.GreaterThan(inv.TotalBeforeDiscount) {
		return apperror.NewValidation("discount exceeds invoice total").
			WithDetail("field", "discountValue")
	}

	if !inv.NetTotal.Equal(inv.TotalBeforeDiscount.Sub(inv.DiscountValue)) {
		return apperror.NewValidation("net total does not match gross minus discount")
	}

	return nil
}
