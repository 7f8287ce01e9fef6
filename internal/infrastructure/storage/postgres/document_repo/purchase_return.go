package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/purchasereturn"
	"dukkan/internal/infrastructure/storage/postgres"
)

const (
	purchaseReturnsTable     = "doc_purchase_returns"
	purchaseReturnLinesTable = "doc_purchase_return_lines"
)

// Compile-time check that PurchaseReturnRepo implements purchasereturn.Repository.
var _ purchasereturn.Repository = (*PurchaseReturnRepo)(nil)

// PurchaseReturnRepo implements purchasereturn.Repository.
type PurchaseReturnRepo struct {
	docBase
	columns     []string
	lineColumns []string
}

// NewPurchaseReturnRepo creates a purchase-return repository.
func NewPurchaseReturnRepo(txm *postgres.TxManager) *PurchaseReturnRepo {
	return &PurchaseReturnRepo{
		docBase:     newDocBase(txm),
		columns:     postgres.ExtractDBColumns[purchasereturn.Return](),
		lineColumns: postgres.ExtractDBColumns[purchasereturn.Line](),
	}
}

// Create inserts the return header.
func (r *PurchaseReturnRepo) Create(ctx context.Context, ret *purchasereturn.Return) error {
	return r.insertStruct(ctx, purchaseReturnsTable, ret)
}

// SaveLines bulk inserts the return lines.
func (r *PurchaseReturnRepo) SaveLines(ctx context.Context, returnID id.ID, lines []purchasereturn.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, returnID, l.LineNo,
			l.ProductID, l.Quantity,
			l.UnitCost, l.Subtotal,
		})
	}
	return r.copyLines(ctx, purchaseReturnLinesTable, r.lineColumns, rows)
}

// GetByID retrieves the return header.
func (r *PurchaseReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*purchasereturn.Return, error) {
	q := r.builder.Select(r.columns...).
		From(purchaseReturnsTable).
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ret purchasereturn.Return
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ret, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase return", returnID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get purchase return: %w", err))
	}
	return &ret, nil
}

// GetLines retrieves the return lines in line order.
func (r *PurchaseReturnRepo) GetLines(ctx context.Context, returnID id.ID) ([]purchasereturn.Line, error) {
	q := r.builder.Select(r.lineColumns...).
		From(purchaseReturnLinesTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchasereturn.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get purchase return lines: %w", err))
	}
	return lines, nil
}

// ReturnedQuantities sums previously returned quantities per product for a
// purchase, across non-deleted returns.
func (r *PurchaseReturnRepo) ReturnedQuantities(ctx context.Context, purchaseID id.ID) (map[id.ID]int64, error) {
	sql := `
		SELECT l.product_id, SUM(l.quantity)
		FROM doc_purchase_return_lines l
		JOIN doc_purchase_returns ret ON ret.id = l.return_id
		WHERE ret.purchase_id = $1 AND ret.deletion_mark = false
		GROUP BY l.product_id
	`

	querier := r.txm.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, purchaseID)
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
