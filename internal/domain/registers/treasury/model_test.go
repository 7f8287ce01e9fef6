package treasury

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

func TestLog_SignedAmount(t *testing.T) {
	in := NewLog(DirectionIn, SourceSale, id.New(), types.MustMoney("25.00"), "main", "cashier")
	assert.True(t, in.SignedAmount().Equal(types.MustMoney("25.00")))

	out := NewLog(DirectionOut, SourceSalesReturn, id.New(), types.MustMoney("25.00"), "main", "cashier")
	assert.True(t, out.SignedAmount().Equal(types.MustMoney("-25.00")))
}

func TestLog_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid log passes", func(t *testing.T) {
		log := NewLog(DirectionIn, SourceSale, id.New(), types.MustMoney("10.00"), "main", "cashier")
		require.NoError(t, log.Validate(ctx))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		log := NewLog(DirectionIn, SourceSale, id.New(), types.Zero(), "main", "cashier")
		require.Error(t, log.Validate(ctx))
	})

	t.Run("unknown direction rejected", func(t *testing.T) {
		log := NewLog("sideways", SourceSale, id.New(), types.MustMoney("10.00"), "main", "cashier")
		require.Error(t, log.Validate(ctx))
	})

	t.Run("missing branch rejected", func(t *testing.T) {
		log := NewLog(DirectionIn, SourceSale, id.New(), types.MustMoney("10.00"), "", "cashier")
		require.Error(t, log.Validate(ctx))
	})
}

func TestShiftSources_ExcludeSupplierFlows(t *testing.T) {
	// Supplier-side cash movements never feed shift reconciliation.
	for _, src := range ShiftSources {
		assert.NotEqual(t, SourcePurchase, src)
		assert.NotEqual(t, SourcePurchaseVoid, src)
		assert.NotEqual(t, SourcePurchaseReturn, src)
		assert.NotEqual(t, SourceSupplierPayment, src)
	}
}
