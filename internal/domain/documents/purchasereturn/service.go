package purchasereturn

import (
	"context"
	"fmt"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/pkg/logger"
)

// LineRequest is one requested return line.
type LineRequest struct {
	ProductID id.ID
	Quantity  int64
}

// ProcessRequest describes a supplier return to process atomically.
type ProcessRequest struct {
	PurchaseID   id.ID
	RefundMethod RefundMethod
	Lines        []LineRequest
}

// Service is the supplier-return transaction processor.
type Service struct {
	repo      Repository
	purchases purchase.Repository
	products  product.Repository
	treasury  *treasury.Service
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a purchase-return service.
func NewService(
	repo Repository,
	purchases purchase.Repository,
	products product.Repository,
	treasuryService *treasury.Service,
	authzProvider authz.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		purchases: purchases,
		products:  products,
		treasury:  treasuryService,
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

// Process records a supplier return: deducts the returned stock, persists
// the return at original purchase costs and applies the refund, all in one
// transaction.
//
// Per product the returnable cap is the quantity purchased minus everything
// already returned against the same purchase. Goods already sold cannot
// cover the stock deduction and abort the transaction.
//
// A cash refund is registered as a drawer inflow. A debt refund reduces the
// remaining debt on the locked purchase; a refund beyond the remaining debt
// is rejected as an overpayment.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*Return, error) {
	actor, err := s.guard(ctx, authz.ActionProcessPurchaseReturn)
	if err != nil {
		return nil, err
	}

	if id.IsNil(req.PurchaseID) {
		return nil, apperror.NewValidation("purchase is required").
			WithDetail("field", "purchaseId")
	}
	if req.RefundMethod != RefundCash && req.RefundMethod != RefundDebt {
		return nil, apperror.NewValidation("refund method must be cash or debt").
			WithDetail("field", "refundMethod")
	}
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}

	var ret *Return
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.purchases.GetForUpdate(ctx, req.PurchaseID)
		if err != nil {
			return err
		}
		if rec.DeletionMark {
			return apperror.NewConflict("purchase is deleted").
				WithDetail("purchase_id", rec.ID.String())
		}
		lines, err := s.purchases.GetLines(ctx, rec.ID)
		if err != nil {
			return err
		}
		rec.Lines = lines

		returned, err := s.repo.ReturnedQuantities(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("sum prior returns: %w", err)
		}

		received := rec.ReceivedQuantities()
		ret = NewReturn(actor.BranchID, actor.Username, rec.ID, req.RefundMethod)

		for _, line := range req.Lines {
			returnable := received[line.ProductID] - returned[line.ProductID]
			if line.Quantity > returnable {
				return apperror.NewInvalidQuantity("return exceeds returnable quantity").
					WithDetail("product_id", line.ProductID.String()).
					WithDetail("requested", line.Quantity).
					WithDetail("returnable", returnable)
			}

			cost, ok := rec.UnitCostFor(line.ProductID)
			if !ok {
				return apperror.NewNotFound("purchase line", line.ProductID.String())
			}

			p, err := s.products.GetForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < line.Quantity {
				return apperror.NewInsufficientStock(p.ID.String(), line.Quantity, p.Stock)
			}
			if err := s.products.AdjustStock(ctx, p.ID, -line.Quantity); err != nil {
				return err
			}

			ret.AddLine(line.ProductID, line.Quantity, cost)
		}

		if err := ret.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		if err := s.repo.SaveLines(ctx, ret.ID, ret.Lines); err != nil {
			return fmt.Errorf("save return lines: %w", err)
		}

		// Free goods went back without a refund; stock is the only effect.
		if !ret.RefundTotal.IsPositive() {
			return nil
		}

		switch req.RefundMethod {
		case RefundCash:
			log := treasury.NewLog(treasury.DirectionIn, treasury.SourcePurchaseReturn,
				ret.ID, ret.RefundTotal, actor.BranchID, actor.Username)
			return s.treasury.Record(ctx, log)
		default:
			if err := rec.ReduceDebt(ret.RefundTotal); err != nil {
				return err
			}
			return s.purchases.UpdatePayment(ctx, rec)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase return processed",
		"id", ret.ID,
		"purchase", ret.PurchaseID,
		"method", ret.RefundMethod,
		"refund", ret.RefundTotal,
	)
	return ret, nil
}

// Get returns a supplier return with its lines.
func (s *Service) Get(ctx context.Context, returnID id.ID) (*Return, error) {
	ret, err := s.repo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, returnID)
	if err != nil {
		return nil, err
	}
	ret.Lines = lines
	return ret, nil
}
