package register_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukkan/internal/core/id"
	"dukkan/internal/domain/registers/treasury"
)

func TestTreasuryRepo_SumForShiftQuery(t *testing.T) {
	r := NewTreasuryRepo(nil)
	shiftID := id.New()

	sql, args, err := r.sumForShiftQuery(shiftID, treasury.ShiftSources).ToSql()
	require.NoError(t, err)

	// The drawer balance is a signed sum over the append-only log,
	// never a stored counter.
	assert.Contains(t, sql, "CASE WHEN direction = 'in' THEN amount ELSE -amount END")
	assert.Contains(t, sql, "FROM reg_treasury_logs")
	assert.Contains(t, sql, "shift_id = $1")
	assert.Contains(t, sql, "source IN ($2,$3,$4)")

	// Squirrel resolves driver.Valuer args when building, so the uuid
	// arrives as its string form.
	require.Len(t, args, 1+len(treasury.ShiftSources))
	assert.Equal(t, shiftID.String(), args[0])
}
