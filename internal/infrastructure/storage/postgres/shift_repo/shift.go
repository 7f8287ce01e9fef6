// Package shift_repo provides the PostgreSQL implementation of the shift
// repository.
package shift_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukkan/internal/core/apperror"
	"dukkan/internal/core/id"
	"dukkan/internal/domain/shift"
	"dukkan/internal/infrastructure/storage/postgres"
)

const shiftsTable = "reg_shifts"

// Compile-time check that ShiftRepo implements shift.Repository.
var _ shift.Repository = (*ShiftRepo)(nil)

// ShiftRepo implements shift.Repository.
type ShiftRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewShiftRepo creates a shift repository.
func NewShiftRepo(txm *postgres.TxManager) *ShiftRepo {
	return &ShiftRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[shift.Shift](),
	}
}

// Create inserts a new shift.
func (r *ShiftRepo) Create(ctx context.Context, s *shift.Shift) error {
	data := postgres.StructToMap(s)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder.Insert(shiftsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", shiftsTable, err))
	}
	return nil
}

// GetByID retrieves a shift by ID.
func (r *ShiftRepo) GetByID(ctx context.Context, shiftID id.ID) (*shift.Shift, error) {
	q := r.builder.Select(r.columns...).
		From(shiftsTable).
		Where(squirrel.Eq{"id": shiftID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s shift.Shift
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("shift", shiftID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get shift: %w", err))
	}
	return &s, nil
}

// GetOpenForUser returns the actor's open shift, or nil when none exists.
func (r *ShiftRepo) GetOpenForUser(ctx context.Context, username string) (*shift.Shift, error) {
	q := r.builder.Select(r.columns...).
		From(shiftsTable).
		Where(squirrel.Eq{"username": username}).
		Where(squirrel.Eq{"status": shift.StatusOpen}).
		OrderBy("opened_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s shift.Shift
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, postgres.MapError(fmt.Errorf("get open shift: %w", err))
	}
	return &s, nil
}

// Update persists close-time fields with optimistic locking.
// The entity carries the post-increment version; the lock expects the prior one.
func (r *ShiftRepo) Update(ctx context.Context, s *shift.Shift) error {
	q := r.builder.
		Update(shiftsTable).
		Set("status", s.Status).
		Set("closed_at", s.ClosedAt).
		Set("expected_balance", s.ExpectedBalance).
		Set("actual_balance", s.ActualBalance).
		Set("difference", s.Difference).
		Set("notes", s.Notes).
		Set("version", s.Version).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": s.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update shift: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrencyConflict("shift", s.ID.String())
	}
	return nil
}
