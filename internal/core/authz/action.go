// Package authz provides authorization resolution for protected actions.
//
// The resolver is a pure function of (actor, action, configuration): it holds
// no ambient global state, never blocks, and is evaluated synchronously before
// any ledger transaction is opened.
package authz

// Action is a protected operation a caller may attempt.
type Action string

// Section groups actions for section-level gating: hiding a section from a
// role or user denies every action registered under it.
type Section string

const (
	SectionSales     Section = "sales"
	SectionPurchases Section = "purchases"
	SectionReturns   Section = "returns"
	SectionSuppliers Section = "suppliers"
	SectionShifts    Section = "shifts"
	SectionProducts  Section = "products"
	SectionAdmin     Section = "admin"
)

const (
	ActionProcessSale           Action = "sale.process"
	ActionDeleteSale            Action = "sale.delete"
	ActionProcessPurchase       Action = "purchase.process"
	ActionDeletePurchase        Action = "purchase.delete"
	ActionProcessSalesReturn    Action = "sales_return.process"
	ActionProcessPurchaseReturn Action = "purchase_return.process"
	ActionRecordSupplierPayment Action = "supplier_payment.record"
	ActionViewSupplierTotals    Action = "supplier.view_totals"
	ActionOpenShift             Action = "shift.open"
	ActionCloseShift            Action = "shift.close"
	ActionViewTreasury          Action = "treasury.view"
	ActionViewLowStock          Action = "product.view_low_stock"
	ActionManageUsers           Action = "admin.manage_users"
)

// actionSections maps every registered action to its owning section.
var actionSections = map[Action]Section{
	ActionProcessSale:           SectionSales,
	ActionDeleteSale:            SectionSales,
	ActionProcessPurchase:       SectionPurchases,
	ActionDeletePurchase:        SectionPurchases,
	ActionProcessSalesReturn:    SectionReturns,
	ActionProcessPurchaseReturn: SectionReturns,
	ActionRecordSupplierPayment: SectionSuppliers,
	ActionViewSupplierTotals:    SectionSuppliers,
	ActionOpenShift:             SectionShifts,
	ActionCloseShift:            SectionShifts,
	ActionViewTreasury:          SectionShifts,
	ActionViewLowStock:          SectionProducts,
	ActionManageUsers:           SectionAdmin,
}

// SectionOf returns the section an action belongs to.
// Unregistered actions belong to no section and are only subject to
// action-level rules.
func SectionOf(action Action) (Section, bool) {
	s, ok := actionSections[action]
	return s, ok
}

// Actions returns all registered actions. Used by the seed tool and tests.
func Actions() []Action {
	out := make([]Action, 0, len(actionSections))
	for a := range actionSections {
		out = append(out, a)
	}
	return out
}
