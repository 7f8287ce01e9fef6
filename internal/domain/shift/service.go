package shift

import (
	"context"
	"fmt"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/pkg/logger"
)

// Service manages the shift lifecycle and close-time reconciliation.
type Service struct {
	repo      Repository
	treasury  treasury.Repository
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a shift service.
func NewService(repo Repository, treasuryRepo treasury.Repository, authzProvider authz.Provider, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		treasury:  treasuryRepo,
		authz:     authzProvider,
		txManager: txManager,
	}
}

func (s *Service) guard(ctx context.Context, action authz.Action) (*appctx.ActorContext, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	cfg, err := s.authz.Current(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := cfg.Guard(authz.Actor{Username: actor.Username, Role: actor.Role}, action); err != nil {
		return nil, err
	}
	return actor, nil
}

// Open starts a shift for the calling actor. Fails when the actor already
// has an open shift.
func (s *Service) Open(ctx context.Context, openingBalance types.Money) (*Shift, error) {
	actor, err := s.guard(ctx, authz.ActionOpenShift)
	if err != nil {
		return nil, err
	}

	sh := Open(actor.BranchID, actor.Username, openingBalance)
	if err := sh.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetOpenForUser(ctx, actor.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflict("actor already has an open shift").
				WithDetail("shift_id", existing.ID.String())
		}
		return s.repo.Create(ctx, sh)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift opened", "id", sh.ID, "opening_balance", sh.OpeningBalance)
	return sh, nil
}

// CurrentForActor returns the calling actor's open shift, or nil.
func (s *Service) CurrentForActor(ctx context.Context) (*Shift, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return s.repo.GetOpenForUser(ctx, actor.Username)
}

// Close seals the shift with an actor-declared actual balance.
// Expected is computed from the shift's drawer events (sales, voids, returns)
// plus the opening balance; the difference is snapshotted at close and never
// recalculated afterwards.
func (s *Service) Close(ctx context.Context, shiftID id.ID, actual types.Money, notes string) (*Shift, error) {
	_, err := s.guard(ctx, authz.ActionCloseShift)
	if err != nil {
		return nil, err
	}

	var sh *Shift
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sh, err = s.repo.GetByID(ctx, shiftID)
		if err != nil {
			return err
		}

		drawer, err := s.treasury.SumForShift(ctx, sh.ID, treasury.ShiftSources)
		if err != nil {
			return fmt.Errorf("sum shift drawer events: %w", err)
		}

		expected := sh.OpeningBalance.Add(drawer)
		if err := sh.Close(expected, actual, notes); err != nil {
			return err
		}

		return s.repo.Update(ctx, sh)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift closed",
		"id", sh.ID,
		"expected", sh.ExpectedBalance,
		"actual", sh.ActualBalance,
		"difference", sh.Difference,
	)
	return sh, nil
}
