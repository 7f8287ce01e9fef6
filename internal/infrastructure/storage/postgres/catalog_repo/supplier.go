package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/infrastructure/storage/postgres"
)

const suppliersTable = "cat_suppliers"

// Compile-time check that SupplierRepo implements supplier.Repository.
var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[supplier.Supplier](),
	}
}

// Create inserts a new supplier using its "db" tags.
func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	data := postgres.StructToMap(s)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder.Insert(suppliersTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", suppliersTable, err))
	}
	return nil
}

// GetByID retrieves a supplier by ID.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.builder.Select(r.columns...).
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", supplierID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get supplier: %w", err))
	}
	return &s, nil
}

// Exists checks if a supplier exists.
func (r *SupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	q := r.builder.
		Select("1").
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, postgres.MapError(fmt.Errorf("exists: %w", err))
	}
	return true, nil
}

// ComputeTotals aggregates the supplier ledger from the live purchase and
// purchase-return rows. Nothing here is ever stored back; every call reflects
// the non-deleted rows.
func (r *SupplierRepo) ComputeTotals(ctx context.Context, supplierID id.ID) (supplier.Totals, error) {
	var supplied, paid, debt, cashRefunded types.Money

	purchasesSQL := `
		SELECT
			COALESCE(SUM(total), 0),
			COALESCE(SUM(paid), 0),
			COALESCE(SUM(GREATEST(remaining, 0)), 0)
		FROM doc_purchases
		WHERE supplier_id = $1 AND deletion_mark = false
	`

	querier := r.txm.GetQuerier(ctx)
	err := querier.QueryRow(ctx, purchasesSQL, supplierID).
		Scan(&supplied, &paid, &debt)
	if err != nil && err != pgx.ErrNoRows {
		return supplier.Totals{}, postgres.MapError(fmt.Errorf("sum supplier purchases: %w", err))
	}

	// Debt-method returns already lowered total and remaining on the purchase
	// row; only cash refunds still need subtracting.
	refundsSQL := `
		SELECT COALESCE(SUM(pr.refund_total), 0)
		FROM doc_purchase_returns pr
		JOIN doc_purchases p ON p.id = pr.purchase_id
		WHERE p.supplier_id = $1 AND p.deletion_mark = false
		  AND pr.deletion_mark = false AND pr.refund_method = 'cash'
	`

	err = querier.QueryRow(ctx, refundsSQL, supplierID).Scan(&cashRefunded)
	if err != nil && err != pgx.ErrNoRows {
		return supplier.Totals{}, postgres.MapError(fmt.Errorf("sum supplier cash refunds: %w", err))
	}

	return supplier.TotalsFromSums(supplierID.String(), supplied, paid, debt, cashRefunded), nil
}
