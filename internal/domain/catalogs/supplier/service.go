package supplier

import (
	"context"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/pkg/logger"
)

// Service provides supplier catalog operations and the totals projection.
type Service struct {
	repo      Repository
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a supplier service.
func NewService(repo Repository, authzProvider authz.Provider, txManager tx.Manager) *Service {
	return &Service{repo: repo, authz: authzProvider, txManager: txManager}
}

// Create registers a new supplier.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, sup)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "supplier created", "id", sup.ID, "name", sup.Name)
	return nil
}

// Totals recomputes the supplier aggregate. Read-only projection over
// immutable and append-only rows; no locking required.
func (s *Service) Totals(ctx context.Context, supplierID id.ID) (Totals, error) {
	actor := appctx.GetActor(ctx)
	if actor == nil {
		return Totals{}, apperror.NewUnauthorized("authentication required")
	}

	cfg, err := s.authz.Current(ctx)
	if err != nil {
		return Totals{}, apperror.NewInternal(err)
	}
	if err := cfg.Guard(authz.Actor{Username: actor.Username, Role: actor.Role}, authz.ActionViewSupplierTotals); err != nil {
		return Totals{}, err
	}

	exists, err := s.repo.Exists(ctx, supplierID)
	if err != nil {
		return Totals{}, err
	}
	if !exists {
		return Totals{}, apperror.NewNotFound("supplier", supplierID.String())
	}

	return s.repo.ComputeTotals(ctx, supplierID)
}
