package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
)

func newRecordWithTotal(t *testing.T, total string) *Record {
	t.Helper()
	r := NewRecord("main", "manager", id.New())
	r.AddLine(id.New(), 1, types.MustMoney(total))
	return r
}

func TestRecord_SetInitialPayment(t *testing.T) {
	tests := []struct {
		name       string
		paid       string
		wantStatus Status
		wantErr    string
	}{
		{name: "fully paid is cash", paid: "100.00", wantStatus: StatusCash},
		{name: "partially paid is credit", paid: "40.00", wantStatus: StatusCredit},
		{name: "unpaid is credit", paid: "0", wantStatus: StatusCredit},
		{name: "overpayment rejected", paid: "100.01", wantErr: apperror.CodeOverpaymentRejected},
		{name: "negative rejected", paid: "-1.00", wantErr: apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecordWithTotal(t, "100.00")
			err := r.SetInitialPayment(types.MustMoney(tt.paid))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, r.Status)
			assert.True(t, r.Remaining.Equal(r.Total.Sub(r.Paid)))
		})
	}
}

func TestRecord_ApplyPayment(t *testing.T) {
	r := newRecordWithTotal(t, "100.00")
	require.NoError(t, r.SetInitialPayment(types.MustMoney("30.00")))
	require.Equal(t, StatusCredit, r.Status)

	require.NoError(t, r.ApplyPayment(types.MustMoney("50.00")))
	assert.True(t, r.Paid.Equal(types.MustMoney("80.00")))
	assert.True(t, r.Remaining.Equal(types.MustMoney("20.00")))
	assert.Equal(t, StatusCredit, r.Status)

	// Paying beyond the remaining debt leaves the record untouched.
	err := r.ApplyPayment(types.MustMoney("20.01"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))
	assert.True(t, r.Remaining.Equal(types.MustMoney("20.00")))

	require.NoError(t, r.ApplyPayment(types.MustMoney("20.00")))
	assert.Equal(t, StatusSettled, r.Status)
	assert.True(t, r.Remaining.IsZero())
}

func TestRecord_ReduceDebt(t *testing.T) {
	r := newRecordWithTotal(t, "100.00")
	require.NoError(t, r.SetInitialPayment(types.MustMoney("60.00")))

	// A debt-method return shrinks both remaining and total so that
	// remaining = total - paid keeps holding.
	require.NoError(t, r.ReduceDebt(types.MustMoney("25.00")))
	assert.True(t, r.Total.Equal(types.MustMoney("75.00")))
	assert.True(t, r.Remaining.Equal(types.MustMoney("15.00")))
	assert.True(t, r.Paid.Equal(types.MustMoney("60.00")))
	assert.True(t, r.Remaining.Equal(r.Total.Sub(r.Paid)))

	err := r.ReduceDebt(types.MustMoney("15.01"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))

	require.NoError(t, r.ReduceDebt(types.MustMoney("15.00")))
	assert.Equal(t, StatusSettled, r.Status)
}

func TestRecord_ReceivedQuantities(t *testing.T) {
	productA := id.New()

	r := NewRecord("main", "manager", id.New())
	r.AddLine(productA, 5, types.MustMoney("2.00"))
	r.AddLine(productA, 3, types.MustMoney("2.00"))

	assert.Equal(t, int64(8), r.ReceivedQuantities()[productA])
	assert.True(t, r.Total.Equal(types.MustMoney("16.00")))
}
