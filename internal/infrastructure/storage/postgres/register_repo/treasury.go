// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/infrastructure/storage/postgres"
)

const treasuryTable = "reg_treasury_logs"

// Compile-time check that TreasuryRepo implements treasury.Repository.
var _ treasury.Repository = (*TreasuryRepo)(nil)

// TreasuryRepo implements treasury.Repository. The table is append-only;
// balances are signed sums computed in the store, never kept as a counter.
type TreasuryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewTreasuryRepo creates a treasury register repository.
func NewTreasuryRepo(txm *postgres.TxManager) *TreasuryRepo {
	return &TreasuryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[treasury.Log](),
	}
}

// Append inserts one drawer event.
func (r *TreasuryRepo) Append(ctx context.Context, log *treasury.Log) error {
	data := postgres.StructToMap(log)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder.Insert(treasuryTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", treasuryTable, err))
	}
	return nil
}

// Balance returns the signed sum of logs matching the filter.
func (r *TreasuryRepo) Balance(ctx context.Context, filter treasury.BalanceFilter) (types.Money, error) {
	q := r.builder.
		Select(signedSumColumn).
		From(treasuryTable).
		Where(squirrel.Eq{"branch_id": filter.BranchID})

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var balance types.Money
	querier := r.txm.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), postgres.MapError(fmt.Errorf("sum drawer balance: %w", err))
	}
	return balance, nil
}

const signedSumColumn = "COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END), 0)"

func (r *TreasuryRepo) sumForShiftQuery(shiftID id.ID, sources []treasury.Source) squirrel.SelectBuilder {
	return r.builder.
		Select(signedSumColumn).
		From(treasuryTable).
		Where(squirrel.Eq{"shift_id": shiftID}).
		Where(squirrel.Eq{"source": sources})
}

// SumForShift returns the signed sum of a shift's logs restricted to the
// given sources.
func (r *TreasuryRepo) SumForShift(ctx context.Context, shiftID id.ID, sources []treasury.Source) (types.Money, error) {
	sql, args, err := r.sumForShiftQuery(shiftID, sources).ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var sum types.Money
	querier := r.txm.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&sum)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), postgres.MapError(fmt.Errorf("sum shift drawer events: %w", err))
	}
	return sum, nil
}

// ListByReference returns logs for an originating ledger record.
func (r *TreasuryRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]treasury.Log, error) {
	q := r.builder.Select(r.columns...).
		From(treasuryTable).
		Where(squirrel.Eq{"reference_id": referenceID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var logs []treasury.Log
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &logs, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list drawer logs: %w", err))
	}
	return logs, nil
}
