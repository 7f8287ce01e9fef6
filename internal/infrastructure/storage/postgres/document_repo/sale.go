package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/documents/sale"
	"dukkan/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

// Compile-time check that SaleRepo implements sale.Repository.
var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	docBase
	columns     []string
	lineColumns []string
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		docBase:     newDocBase(txm),
		columns:     postgres.ExtractDBColumns[sale.Invoice](),
		lineColumns: postgres.ExtractDBColumns[sale.Line](),
	}
}

// Create inserts the invoice header.
func (r *SaleRepo) Create(ctx context.Context, inv *sale.Invoice) error {
	return r.insertStruct(ctx, salesTable, inv)
}

// SaveLines bulk inserts the invoice lines.
func (r *SaleRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []sale.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{
			l.LineID, invoiceID, l.LineNo,
			l.ProductID, l.Quantity,
			l.UnitPrice, l.CostAtSale, l.Subtotal,
		})
	}
	return r.copyLines(ctx, saleLinesTable, r.lineColumns, rows)
}

// GetByID retrieves the invoice header.
func (r *SaleRepo) GetByID(ctx context.Context, invoiceID id.ID) (*sale.Invoice, error) {
	q := r.builder.Select(r.columns...).
		From(salesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv sale.Invoice
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", invoiceID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get sale: %w", err))
	}
	return &inv, nil
}

// GetLines retrieves the invoice lines in line order.
func (r *SaleRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]sale.Line, error) {
	q := r.builder.Select(r.lineColumns...).
		From(saleLinesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get sale lines: %w", err))
	}
	return lines, nil
}

// MarkDeleted flips the soft-delete flag with its metadata.
func (r *SaleRepo) MarkDeleted(ctx context.Context, inv *sale.Invoice) error {
	return r.markDeleted(ctx, salesTable, &inv.BaseEntity)
}
