package product

import (
	"context"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/tx"
	"dukkan/pkg/logger"
)

// Service provides catalog operations over products.
// Stock mutations happen inside the transaction processors, not here.
type Service struct {
	repo      Repository
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a product service.
func NewService(repo Repository, authzProvider authz.Provider, txManager tx.Manager) *Service {
	return &Service{repo: repo, authz: authzProvider, txManager: txManager}
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name, "branch", p.BranchID)
	return nil
}

// LowStock returns products at or below their low-stock threshold for the
// actor's branch.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	cfg, err := s.authz.Current(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := cfg.Guard(authz.Actor{Username: actor.Username, Role: actor.Role}, authz.ActionViewLowStock); err != nil {
		return nil, err
	}

	return s.repo.ListLowStock(ctx, actor.BranchID)
}
