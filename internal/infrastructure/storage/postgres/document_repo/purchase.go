package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

// Compile-time check that PurchaseRepo implements purchase.Repository.
var _ purchase.Repository = (*PurchaseRepo)(nil)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	docBase
	columns     []string
	lineColumns []string
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		docBase:     newDocBase(txm),
		columns:     postgres.ExtractDBColumns[purchase.Record](),
		lineColumns: postgres.ExtractDBColumns[purchase.Line](),
	}
}

// Create inserts the purchase header.
func (r *PurchaseRepo) Create(ctx context.Context, rec *purchase.Record) error {
	return r.insertStruct(ctx, purchasesTable, rec)
}

// SaveLines bulk inserts the purchase lines.
func (r *PurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, purchaseID, l.LineNo,
			l.ProductID, l.Quantity,
			l.UnitCost, l.Subtotal,
		})
	}
	return r.copyLines(ctx, purchaseLinesTable, r.lineColumns, rows)
}

// GetByID retrieves the purchase header.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	return r.getOne(ctx, purchaseID, false)
}

// GetForUpdate retrieves the purchase header with a row lock.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	return r.getOne(ctx, purchaseID, true)
}

func (r *PurchaseRepo) getOne(ctx context.Context, purchaseID id.ID, forUpdate bool) (*purchase.Record, error) {
	q := r.builder.Select(r.columns...).
		From(purchasesTable).
		Where(squirrel.Eq{"id": purchaseID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	} else {
		q = q.Limit(1)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec purchase.Record
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get purchase: %w", err))
	}
	return &rec, nil
}

// GetLines retrieves the purchase lines in line order.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	q := r.builder.Select(r.lineColumns...).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get purchase lines: %w", err))
	}
	return lines, nil
}

// ListUnpaidBySupplier returns non-deleted purchases with remaining debt,
// oldest first, locking the rows so a concurrent settlement over the same
// supplier serializes behind this one.
func (r *PurchaseRepo) ListUnpaidBySupplier(ctx context.Context, supplierID id.ID) ([]purchase.Record, error) {
	q := r.builder.Select(r.columns...).
		From(purchasesTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Gt{"remaining": 0}).
		OrderBy("created_at ASC", "id ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []purchase.Record
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list unpaid purchases: %w", err))
	}
	return records, nil
}

// UpdatePayment persists paid, remaining, total and status with optimistic
// locking. Total moves only on debt-method returns.
func (r *PurchaseRepo) UpdatePayment(ctx context.Context, rec *purchase.Record) error {
	q := r.builder.
		Update(purchasesTable).
		Set("total", rec.Total).
		Set("paid", rec.Paid).
		Set("remaining", rec.Remaining).
		Set("status", rec.Status).
		Set("version", rec.Version).
		Where(squirrel.Eq{"id": rec.ID}).
		Where(squirrel.Eq{"version": rec.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update purchase payment: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrencyConflict("purchase", rec.ID.String())
	}
	return nil
}

// MarkDeleted flips the soft-delete flag with its metadata.
func (r *PurchaseRepo) MarkDeleted(ctx context.Context, rec *purchase.Record) error {
	return r.markDeleted(ctx, purchasesTable, &rec.BaseEntity)
}
