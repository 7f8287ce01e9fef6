// Package document_repo provides PostgreSQL implementations for ledger
// document repositories (sales, purchases, returns, payments).
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/entity"
	"dukkan/internal/infrastructure/storage/postgres"
)

// docBase carries the pieces shared by all document repositories.
type docBase struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

func newDocBase(txm *postgres.TxManager) docBase {
	return docBase{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// insertStruct inserts an entity into table using its "db" tags.
func (b docBase) insertStruct(ctx context.Context, table string, v any) error {
	data := postgres.StructToMap(v)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := b.builder.Insert(table).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := b.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", table, err))
	}
	return nil
}

// copyLines bulk inserts document lines through the COPY protocol.
// Requires an ambient transaction so lines commit with their document.
func (b docBase) copyLines(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := postgres.NewBatchInserter(b.txm)
	if _, err := inserter.CopyFromSlice(ctx, table, columns, rows); err != nil {
		return postgres.MapError(fmt.Errorf("copy %s: %w", table, err))
	}
	return nil
}

// markDeleted flips the soft-delete flag with its metadata using optimistic
// locking. The base entity must already carry the new deletion state and the
// pre-increment version.
func (b docBase) markDeleted(ctx context.Context, table string, base *entity.BaseEntity) error {
	q := b.builder.
		Update(table).
		Set("deletion_mark", base.DeletionMark).
		Set("deleted_by", base.DeletedBy).
		Set("deleted_reason", base.DeletedReason).
		Set("deleted_at", base.DeletedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": base.ID}).
		Where(squirrel.Eq{"version": base.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark deleted: %w", err)
	}

	querier := b.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("mark deleted %s: %w", table, err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrencyConflict(table, base.ID.String())
	}

	base.Version++
	return nil
}
