package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/salesreturn"
	"dukkan/internal/infrastructure/storage/postgres"
)

const (
	salesReturnsTable     = "doc_sales_returns"
	salesReturnLinesTable = "doc_sales_return_lines"
)

// Compile-time check that SalesReturnRepo implements salesreturn.Repository.
var _ salesreturn.Repository = (*SalesReturnRepo)(nil)

// SalesReturnRepo implements salesreturn.Repository.
type SalesReturnRepo struct {
	docBase
	columns     []string
	lineColumns []string
}

// NewSalesReturnRepo creates a sales-return repository.
func NewSalesReturnRepo(txm *postgres.TxManager) *SalesReturnRepo {
	return &SalesReturnRepo{
		docBase:     newDocBase(txm),
		columns:     postgres.ExtractDBColumns[salesreturn.Return](),
		lineColumns: postgres.ExtractDBColumns[salesreturn.Line](),
	}
}

// Create inserts the return header.
func (r *SalesReturnRepo) Create(ctx context.Context, ret *salesreturn.Return) error {
	return r.insertStruct(ctx, salesReturnsTable, ret)
}

// SaveLines bulk inserts the return lines.
func (r *SalesReturnRepo) SaveLines(ctx context.Context, returnID id.ID, lines []salesreturn.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, returnID, l.LineNo,
			l.ProductID, l.Quantity,
			l.UnitPrice, l.Subtotal,
		})
	}
	return r.copyLines(ctx, salesReturnLinesTable, r.lineColumns, rows)
}

// GetByID retrieves the return header.
func (r *SalesReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*salesreturn.Return, error) {
	q := r.builder.Select(r.columns...).
		From(salesReturnsTable).
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ret salesreturn.Return
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ret, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sales return", returnID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get sales return: %w", err))
	}
	return &ret, nil
}

// GetLines retrieves the return lines in line order.
func (r *SalesReturnRepo) GetLines(ctx context.Context, returnID id.ID) ([]salesreturn.Line, error) {
	q := r.builder.Select(r.lineColumns...).
		From(salesReturnLinesTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []salesreturn.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get sales return lines: %w", err))
	}
	return lines, nil
}

// ReturnedQuantities sums previously returned quantities per product for a
// sale, across non-deleted returns.
func (r *SalesReturnRepo) ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error) {
	sql := `
		SELECT l.product_id, SUM(l.quantity)
		FROM doc_sales_return_lines l
		JOIN doc_sales_returns ret ON ret.id = l.return_id
		WHERE ret.sale_id = $1 AND ret.deletion_mark = false
		GROUP BY l.product_id
	`

	querier := r.txm.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, saleID)
	if err != nil {
		return nil, postgres.MapError(fmt.Errorf("sum returned quantities: %w", err))
	}
	defer rows.Close()

	out := make(map[id.ID]int64)
	for rows.Next() {
		var productID id.ID
		var qty int64
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[productID] = qty
	}
	return out, rows.Err()
}
