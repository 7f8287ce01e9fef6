package salesreturn

import (
	"context"
	"fmt"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/domain/documents/sale"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/domain/shift"
	"dukkan/pkg/logger"
)

// LineRequest is one requested return line.
type LineRequest struct {
	ProductID id.ID
	Quantity  int64
}

// ProcessRequest describes a customer return to process atomically.
type ProcessRequest struct {
	SaleID id.ID
	Lines  []LineRequest
}

// Service is the customer-return transaction processor.
type Service struct {
	repo      Repository
	sales     sale.Repository
	products  product.Repository
	shifts    shift.Repository
	treasury  *treasury.Service
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a sales-return service.
func NewService(
	repo Repository,
	sales sale.Repository,
	products product.Repository,
	shifts shift.Repository,
	treasuryService *treasury.Service,
	authzProvider authz.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		sales:     sales,
		products:  products,
		shifts:    shifts,
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

// Process records a customer return: restores stock per line, persists the
// return at original sale prices and registers the cash refund against the
// actor's open shift, all in one transaction.
//
// Per product the returnable cap is the quantity sold minus everything
// already returned against the same sale; repeated partial returns shrink
// the cap until it reaches zero.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*Return, error) {
	actor, err := s.guard(ctx, authz.ActionProcessSalesReturn)
	if err != nil {
		return nil, err
	}

	if id.IsNil(req.SaleID) {
		return nil, apperror.NewValidation("sale is required").
			WithDetail("field", "saleId")
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
		openShift, err := s.shifts.GetOpenForUser(ctx, actor.Username)
		if err != nil {
			return err
		}
		if openShift == nil {
			return apperror.NewNoOpenShift(actor.Username)
		}

		inv, err := s.sales.GetByID(ctx, req.SaleID)
		if err != nil {
			return err
		}
		if inv.DeletionMark {
			return apperror.NewConflict("sale is deleted").
				WithDetail("sale_id", inv.ID.String())
		}
		lines, err := s.sales.GetLines(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.Lines = lines

		returned, err := s.repo.ReturnedQuantities(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("sum prior returns: %w", err)
		}

		sold := inv.SoldQuantities()
		ret = NewReturn(actor.BranchID, actor.Username, inv.ID, openShift.ID)

		for _, line := range req.Lines {
			returnable := sold[line.ProductID] - returned[line.ProductID]
			if line.Quantity > returnable {
				return apperror.NewInvalidQuantity("return exceeds returnable quantity").
					WithDetail("product_id", line.ProductID.String()).
					WithDetail("requested", line.Quantity).
					WithDetail("returnable", returnable)
			}

			price, ok := inv.UnitPriceFor(line.ProductID)
			if !ok {
				return apperror.NewNotFound("sale line", line.ProductID.String())
			}

			if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			ret.AddLine(line.ProductID, line.Quantity, price)
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

		// Returning zero-priced items restores stock without a refund.
		if !ret.RefundTotal.IsPositive() {
			return nil
		}
		log := treasury.NewLog(treasury.DirectionOut, treasury.SourceSalesReturn,
			ret.ID, ret.RefundTotal, actor.BranchID, actor.Username).
			WithShift(openShift.ID)
		return s.treasury.Record(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales return processed",
		"id", ret.ID,
		"sale", ret.SaleID,
		"refund", ret.RefundTotal,
	)
	return ret, nil
}

// Get returns a customer return with its lines.
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
