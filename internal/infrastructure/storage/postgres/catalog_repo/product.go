// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

// Compile-time check that ProductRepo implements product.Repository.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[product.Product](),
	}
}

// Create inserts a new product using its "db" tags.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	data := postgres.StructToMap(p)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder.Insert(productsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", productsTable, err))
	}
	return nil
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(r.columns...).From(productsTable)
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get product: %w", err))
	}
	return &p, nil
}

// GetForUpdate retrieves a product with a row lock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get product for update: %w", err))
	}
	return &p, nil
}

// AdjustStock applies a signed stock delta as one conditional UPDATE.
// The stock >= 0 guard is part of the statement: a deduction past zero
// matches no row, leaves the row untouched and surfaces as insufficient
// stock with the current quantity.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) error {
	sql := `
		UPDATE cat_products
		SET stock = stock + $1, version = version + 1
		WHERE id = $2 AND stock + $1 >= 0
	`

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, delta, productID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("adjust stock: %w", err))
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// No row updated: either the product is missing or stock cannot cover
	// the deduction. Read the row to tell the two apart.
	var stock int64
	err = querier.QueryRow(ctx, "SELECT stock FROM cat_products WHERE id = $1", productID).Scan(&stock)
	if err == pgx.ErrNoRows {
		return apperror.NewNotFound("product", productID.String())
	}
	if err != nil {
		return postgres.MapError(fmt.Errorf("read stock: %w", err))
	}
	return apperror.NewInsufficientStock(productID.String(), -delta, stock)
}

func (r *ProductRepo) lowStockQuery(branchID string) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Gt{"low_stock_threshold": 0}).
		Where(squirrel.Expr("stock <= low_stock_threshold")).
		OrderBy("stock ASC", "name ASC")
}

// ListLowStock returns non-deleted products at or below their threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context, branchID string) ([]product.Product, error) {
	sql, args, err := r.lowStockQuery(branchID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list low stock: %w", err))
	}
	return products, nil
}

// Exists checks if a product exists.
func (r *ProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	q := r.builder.
		Select("1").
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
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
