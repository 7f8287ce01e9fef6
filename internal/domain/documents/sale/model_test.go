package sale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

func TestInvoice_TotalsArithmetic(t *testing.T) {
	inv := NewInvoice("main", "cashier", id.New())

	inv.AddLine(id.New(), 2, types.MustMoney("10.50"), types.MustMoney("7.00"))
	inv.AddLine(id.New(), 3, types.MustMoney("4.00"), types.MustMoney("2.50"))

	assert.True(t, inv.TotalBeforeDiscount.Equal(types.MustMoney("33.00")))
	assert.True(t, inv.NetTotal.Equal(types.MustMoney("33.00")))

	inv.ApplyDiscount(types.MustMoney("3.00"))
	assert.True(t, inv.NetTotal.Equal(types.MustMoney("30.00")))

	// Adding a line after a discount keeps net = gross - discount.
	inv.AddLine(id.New(), 1, types.MustMoney("7.00"), types.MustMoney("5.00"))
	assert.True(t, inv.TotalBeforeDiscount.Equal(types.MustMoney("40.00")))
	assert.True(t, inv.NetTotal.Equal(types.MustMoney("37.00")))
}

func TestInvoice_Validate(t *testing.T) {
	ctx := context.Background()

	valid := func() *Invoice {
		inv := NewInvoice("main", "cashier", id.New())
		inv.AddLine(id.New(), 1, types.MustMoney("10.00"), types.MustMoney("6.00"))
		return inv
	}

	t.Run("valid invoice passes", func(t *testing.T) {
		require.NoError(t, valid().Validate(ctx))
	})

	t.Run("fully discounted invoice passes", func(t *testing.T) {
		inv := valid()
		inv.ApplyDiscount(types.MustMoney("10.00"))
		require.NoError(t, inv.Validate(ctx))
		assert.True(t, inv.NetTotal.IsZero())
	})

	t.Run("duplicate product lines rejected", func(t *testing.T) {
		productID := id.New()
		inv := NewInvoice("main", "cashier", id.New())
		inv.AddLine(productID, 1, types.MustMoney("10.00"), types.MustMoney("6.00"))
		inv.AddLine(productID, 2, types.MustMoney("8.00"), types.MustMoney("6.00"))
		err := inv.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("discount above gross rejected", func(t *testing.T) {
		inv := valid()
		inv.ApplyDiscount(types.MustMoney("10.01"))
		err := inv.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		inv := valid()
		inv.ApplyDiscount(types.MustMoney("-1.00"))
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("no lines rejected", func(t *testing.T) {
		inv := NewInvoice("main", "cashier", id.New())
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("missing shift rejected", func(t *testing.T) {
		inv := NewInvoice("main", "cashier", id.Nil())
		inv.AddLine(id.New(), 1, types.MustMoney("10.00"), types.Zero())
		require.Error(t, inv.Validate(ctx))
	})

	t.Run("tampered net total rejected", func(t *testing.T) {
		inv := valid()
		inv.NetTotal = types.MustMoney("999.00")
		require.Error(t, inv.Validate(ctx))
	})
}

func TestInvoice_SoldQuantities(t *testing.T) {
	productA := id.New()
	productB := id.New()

	inv := NewInvoice("main", "cashier", id.New())
	inv.AddLine(productA, 2, types.MustMoney("5.00"), types.Zero())
	inv.AddLine(productB, 1, types.MustMoney("3.00"), types.Zero())
	inv.AddLine(productA, 4, types.MustMoney("5.00"), types.Zero())

	sold := inv.SoldQuantities()
	assert.Equal(t, int64(6), sold[productA])
	assert.Equal(t, int64(1), sold[productB])
}
