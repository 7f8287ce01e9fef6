package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/settlement"
	"dukkan/internal/infrastructure/storage/postgres"
)

const (
	paymentsTable    = "doc_supplier_payments"
	allocationsTable = "doc_payment_allocations"
)

// Compile-time check that PaymentRepo implements settlement.Repository.
var _ settlement.Repository = (*PaymentRepo)(nil)

// PaymentRepo implements settlement.Repository.
type PaymentRepo struct {
	docBase
	columns           []string
	allocationColumns []string
}

// NewPaymentRepo creates a supplier-payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		docBase:           newDocBase(txm),
		columns:           postgres.ExtractDBColumns[settlement.Payment](),
		allocationColumns: postgres.ExtractDBColumns[settlement.Allocation](),
	}
}

// Create inserts the payment header.
func (r *PaymentRepo) Create(ctx context.Context, p *settlement.Payment) error {
	return r.insertStruct(ctx, paymentsTable, p)
}

// SaveAllocations bulk inserts the payment allocations.
func (r *PaymentRepo) SaveAllocations(ctx context.Context, paymentID id.ID, allocations []settlement.Allocation) error {
	rows := make([][]any, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, []any{
			a.ID, paymentID, a.PurchaseID, a.Amount,
		})
	}
	return r.copyLines(ctx, allocationsTable, r.allocationColumns, rows)
}

// GetByID retrieves the payment header.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*settlement.Payment, error) {
	q := r.builder.Select(r.columns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p settlement.Payment
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier payment", paymentID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get payment: %w", err))
	}
	return &p, nil
}

// GetAllocations retrieves the payment allocations.
func (r *PaymentRepo) GetAllocations(ctx context.Context, paymentID id.ID) ([]settlement.Allocation, error) {
	q := r.builder.Select(r.allocationColumns...).
		From(allocationsTable).
		Where(squirrel.Eq{"payment_id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var allocations []settlement.Allocation
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &allocations, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get allocations: %w", err))
	}
	return allocations, nil
}

// ListBySupplier returns non-deleted payments for a supplier, newest first.
func (r *PaymentRepo) ListBySupplier(ctx context.Context, supplierID id.ID) ([]settlement.Payment, error) {
	q := r.builder.Select(r.columns...).
		From(paymentsTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at DESC", "id DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []settlement.Payment
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}
