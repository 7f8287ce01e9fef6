package treasury

import (
	"context"
	"fmt"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/types"
	"dukkan/pkg/logger"
)

// Service provides drawer register operations.
// Appends are called by the transaction processors within their transaction;
// balance reads are lock-free projections.
type Service struct {
	repo  Repository
	authz authz.Provider
}

// NewService creates a treasury service.
func NewService(repo Repository, authzProvider authz.Provider) *Service {
	return &Service{repo: repo, authz: authzProvider}
}

// Record validates and appends a drawer event. Must be called inside the
// originating ledger transaction.
func (s *Service) Record(ctx context.Context, log *Log) error {
	if err := log.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Append(ctx, log); err != nil {
		return fmt.Errorf("append treasury log: %w", err)
	}

	logger.Debug(ctx, "treasury log appended",
		"direction", log.Direction,
		"source", log.Source,
		"amount", log.Amount,
		"reference", log.ReferenceID,
	)
	return nil
}

// Balance returns the drawer balance for a branch/time window.
func (s *Service) Balance(ctx context.Context, filter BalanceFilter) (types.Money, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return types.Zero(), apperror.NewUnauthorized("authentication required")
	}

	cfg, err := s.authz.Current(ctx)
	if err != nil {
		return types.Zero(), apperror.NewInternal(err)
	}
	if err := cfg.Guard(authz.Actor{Username: actor.Username, Role: actor.Role}, authz.ActionViewTreasury); err != nil {
		return types.Zero(), err
	}

	if filter.BranchID == "" {
		filter.BranchID = actor.BranchID
	}

	return s.repo.Balance(ctx, filter)
}
