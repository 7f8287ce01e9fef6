package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dukkan/internal/core/types"
)

func TestTotalsFromSums(t *testing.T) {
	// Purchases of 100.00 with 40.00 paid, then 12.00 of goods handed back
	// for cash: both supplied and paid drop, the open debt does not.
	totals := TotalsFromSums("s1",
		types.MustMoney("100.00"),
		types.MustMoney("40.00"),
		types.MustMoney("60.00"),
		types.MustMoney("12.00"),
	)

	assert.True(t, totals.TotalSupplied.Equal(types.MustMoney("88.00")))
	assert.True(t, totals.TotalPaid.Equal(types.MustMoney("28.00")))
	assert.True(t, totals.CurrentDebt.Equal(types.MustMoney("60.00")))

	// supplied - paid still equals the open debt.
	assert.True(t, totals.TotalSupplied.Sub(totals.TotalPaid).Equal(totals.CurrentDebt))
}

func TestTotalsFromSums_NoCashRefunds(t *testing.T) {
	totals := TotalsFromSums("s1",
		types.MustMoney("50.00"),
		types.MustMoney("50.00"),
		types.Zero(),
		types.Zero(),
	)

	assert.True(t, totals.TotalSupplied.Equal(types.MustMoney("50.00")))
	assert.True(t, totals.TotalPaid.Equal(types.MustMoney("50.00")))
	assert.True(t, totals.CurrentDebt.IsZero())
}
