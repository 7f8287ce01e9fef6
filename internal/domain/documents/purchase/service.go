package purchase

import (
	"context"
	"fmt"
	"sort"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/archive"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/pkg/logger"
)

// NewProduct describes a product created inline by a purchase.
type NewProduct struct {
	Name              string
	Barcode           string
	RetailPrice       types.Money
	LowStockThreshold int64
}

// LineRequest is one requested purchase line. Exactly one of ProductID or
// NewProduct must be set.
type LineRequest struct {
	ProductID  id.ID
	NewProduct *NewProduct

	Quantity int64
	UnitCost types.Money
}

// ProcessRequest describes a purchase to process atomically.
type ProcessRequest struct {
	SupplierID id.ID
	Paid       types.Money
	Lines      []LineRequest
}

// Service is the purchase transaction processor.
type Service struct {
	repo      Repository
	products  product.Repository
	suppliers supplier.Repository
	treasury  *treasury.Service
	sink      archive.Sink
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a purchase service.
func NewService(
	repo Repository,
	products product.Repository,
	suppliers supplier.Repository,
	treasuryService *treasury.Service,
	sink archive.Sink,
	authzProvider authz.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		suppliers: suppliers,
		treasury:  treasuryService,
		sink:      sink,
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

// Process records a supplier delivery: creates inline products, increases
// stock per line, persists the record with its payment status and registers
// the cash outflow for the paid portion, all in one transaction.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*Record, error) {
	actor, err := s.guard(ctx, authz.ActionProcessPurchase)
	if err != nil {
		return nil, err
	}

	if id.IsNil(req.SupplierID) {
		return nil, apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	seen := make(map[id.ID]struct{}, len(req.Lines))
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return nil, apperror.NewValidation("unit cost cannot be negative").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.ProductID) == (line.NewProduct == nil) {
			return nil, apperror.NewValidation("line must reference an existing product or define a new one").
				WithDetail("lineNo", i+1)
		}
		// One line per product keeps return refunds costed unambiguously.
		if !id.IsNil(line.ProductID) {
			if _, dup := seen[line.ProductID]; dup {
				return nil, apperror.NewValidation("product appears on more than one line").
					WithDetail("lineNo", i+1)
			}
			seen[line.ProductID] = struct{}{}
		}
	}

	var rec *Record
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.suppliers.Exists(ctx, req.SupplierID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("supplier", req.SupplierID.String())
		}

		rec = NewRecord(actor.BranchID, actor.Username, req.SupplierID)

		// Resolve inline products first, then lock existing ones in a stable
		// order to avoid deadlocks between concurrent purchases.
		resolved := make([]LineRequest, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.NewProduct != nil {
				p := product.New(actor.BranchID, line.NewProduct.Name, line.UnitCost, line.NewProduct.RetailPrice)
				p.Barcode = line.NewProduct.Barcode
				p.LowStockThreshold = line.NewProduct.LowStockThreshold
				if err := p.Validate(ctx); err != nil {
					return err
				}
				if err := s.products.Create(ctx, p); err != nil {
					return fmt.Errorf("create inline product: %w", err)
				}
				line.ProductID = p.ID
			}
			resolved = append(resolved, line)
		}
		sort.Slice(resolved, func(i, j int) bool {
			return resolved[i].ProductID.String() < resolved[j].ProductID.String()
		})

		for _, line := range resolved {
			p, err := s.products.GetForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.BranchID != actor.BranchID {
				return apperror.NewNotFound("product", line.ProductID.String())
			}
			if err := s.products.AdjustStock(ctx, p.ID, line.Quantity); err != nil {
				return err
			}
			rec.AddLine(p.ID, line.Quantity, line.UnitCost)
		}

		if err := rec.SetInitialPayment(req.Paid); err != nil {
			return err
		}
		if err := rec.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveLines(ctx, rec.ID, rec.Lines); err != nil {
			return fmt.Errorf("save purchase lines: %w", err)
		}

		if rec.Paid.IsPositive() {
			log := treasury.NewLog(treasury.DirectionOut, treasury.SourcePurchase,
				rec.ID, rec.Paid, actor.BranchID, actor.Username)
			return s.treasury.Record(ctx, log)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase processed",
		"id", rec.ID,
		"supplier", rec.SupplierID,
		"total", rec.Total,
		"status", rec.Status,
	)
	return rec, nil
}

// Get returns a purchase record with its lines.
func (s *Service) Get(ctx context.Context, purchaseID id.ID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	rec.Lines = lines
	return rec, nil
}

// Delete voids a purchase: deducts the received stock back out, refunds the
// paid portion to the drawer and soft-deletes the record with an archival
// snapshot. Stock already sold cannot cover the deduction and aborts the
// whole transaction.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID, reason string) error {
	actor, err := s.guard(ctx, authz.ActionDeletePurchase)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.Get(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := rec.CanDelete(); err != nil {
			return err
		}

		for productID, qty := range rec.ReceivedQuantities() {
			p, err := s.products.GetForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if p.Stock < qty {
				return apperror.NewInsufficientStock(p.ID.String(), qty, p.Stock)
			}
			if err := s.products.AdjustStock(ctx, p.ID, -qty); err != nil {
				return err
			}
		}

		if rec.Paid.IsPositive() {
			log := treasury.NewLog(treasury.DirectionIn, treasury.SourcePurchaseVoid,
				rec.ID, rec.Paid, rec.BranchID, actor.Username)
			if err := s.treasury.Record(ctx, log); err != nil {
				return err
			}
		}

		rec.MarkDeleted(actor.Username, reason)
		if err := s.repo.MarkDeleted(ctx, rec); err != nil {
			return err
		}

		snapshot, err := archive.Take("purchase_record", rec.ID, rec, actor.Username, reason)
		if err != nil {
			return err
		}
		return s.sink.Archive(ctx, snapshot)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase deleted", "id", purchaseID, "reason", reason)
	return nil
}
