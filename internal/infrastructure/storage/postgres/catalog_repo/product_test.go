package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_LowStockQuery(t *testing.T) {
	r := NewProductRepo(nil)

	sql, args, err := r.lowStockQuery("main").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM cat_products")
	assert.Contains(t, sql, "branch_id = $1")
	assert.Contains(t, sql, "deletion_mark = $2")
	assert.Contains(t, sql, "stock <= low_stock_threshold")
	assert.Contains(t, sql, "ORDER BY stock ASC, name ASC")
	assert.Equal(t, []any{"main", false, 0}, args)
}

func TestProductRepo_ColumnsCoverStockFields(t *testing.T) {
	r := NewProductRepo(nil)

	assert.Contains(t, r.columns, "stock")
	assert.Contains(t, r.columns, "low_stock_threshold")
	assert.Contains(t, r.columns, "wholesale_cost")
	assert.Contains(t, r.columns, "retail_price")
	assert.Contains(t, r.columns, "offer_price")
}
