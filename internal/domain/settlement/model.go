// Package settlement provides supplier debt payments and their allocation.
package settlement

import (
	"context"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

// Payment is a recorded payment toward supplier debt. A payment may be tied
// to a specific purchase or left untied, in which case it is allocated across
// the supplier's unpaid purchases oldest first.
type Payment struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// PurchaseID ties the payment to one purchase when set.
	PurchaseID *id.ID `db:"purchase_id" json:"purchaseId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`

	Notes string `db:"notes" json:"notes,omitempty"`

	Allocations []Allocation `db:"-" json:"allocations"`
}

// Allocation records how much of a payment settled one purchase.
type Allocation struct {
	ID         id.ID       `db:"id" json:"id"`
	PaymentID  id.ID       `db:"payment_id" json:"paymentId"`
	PurchaseID id.ID       `db:"purchase_id" json:"purchaseId"`
	Amount     types.Money `db:"amount" json:"amount"`
}

// NewPayment creates a payment shell for a supplier.
func NewPayment(branchID, createdBy string, supplierID id.ID, amount types.Money) *Payment {
	return &Payment{
		Document:    entity.NewDocument(branchID, createdBy),
		SupplierID:  supplierID,
		Amount:      amount,
		Allocations: make([]Allocation, 0),
	}
}

// Allocate records that part of the payment settled a purchase.
func (p *Payment) Allocate(purchaseID id.ID, amount types.Money) {
	p.Allocations = append(p.Allocations, Allocation{
		ID:         id.New(),
		PaymentID:  p.ID,
		PurchaseID: purchaseID,
		Amount:     amount,
	})
}

// AllocatedTotal sums the allocations.
func (p *Payment) AllocatedTotal() types.Money {
	total := types.Zero()
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if !p.AllocatedTotal().Equal(p.Amount) {
		return apperror.NewValidation("allocations do not cover the payment amount")
	}
	return nil
}
