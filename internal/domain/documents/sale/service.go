package sale

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
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/domain/shift"
	"dukkan/pkg/logger"
)

// LineRequest is one requested sale line.
type LineRequest struct {
	ProductID id.ID
	Quantity  int64

	// UnitPrice overrides the catalog selling price when set.
	UnitPrice *types.Money
}

// ProcessRequest describes a sale to process atomically.
type ProcessRequest struct {
	CustomerName  string
	DiscountValue types.Money
	Lines         []LineRequest
}

// Service is the sale transaction processor. Process and Delete each run as a
// single transaction: all composite effects commit together or none do.
type Service struct {
	repo      Repository
	products  product.Repository
	shifts    shift.Repository
	treasury  *treasury.Service
	sink      archive.Sink
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a sale service.
func NewService(
	repo Repository,
	products product.Repository,
	shifts shift.Repository,
	treasuryService *treasury.Service,
	sink archive.Sink,
	authzProvider authz.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		shifts:    shifts,
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

// Process records a sale: deducts stock per line, persists the invoice with
// cost snapshots and registers the cash inflow, all in one transaction.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*Invoice, error) {
	actor, err := s.guard(ctx, authz.ActionProcessSale)
	if err != nil {
		return nil, err
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
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation("unit price cannot be negative").
				WithDetail("lineNo", i+1)
		}
		// One line per product keeps return refunds priced unambiguously.
		if _, dup := seen[line.ProductID]; dup {
			return nil, apperror.NewValidation("product appears on more than one line").
				WithDetail("lineNo", i+1)
		}
		seen[line.ProductID] = struct{}{}
	}

	var inv *Invoice
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		openShift, err := s.shifts.GetOpenForUser(ctx, actor.Username)
		if err != nil {
			return err
		}
		if openShift == nil {
			return apperror.NewNoOpenShift(actor.Username)
		}

		inv = NewInvoice(actor.BranchID, actor.Username, openShift.ID)
		inv.CustomerName = req.CustomerName

		// Lock products in a stable order so two concurrent sales over the
		// same set of products cannot deadlock.
		lines := make([]LineRequest, len(req.Lines))
		copy(lines, req.Lines)
		sort.Slice(lines, func(i, j int) bool {
			return lines[i].ProductID.String() < lines[j].ProductID.String()
		})

		for _, line := range lines {
			p, err := s.products.GetForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.BranchID != actor.BranchID {
				return apperror.NewNotFound("product", line.ProductID.String())
			}
			if p.Stock < line.Quantity {
				return apperror.NewInsufficientStock(p.ID.String(), line.Quantity, p.Stock)
			}
			if err := s.products.AdjustStock(ctx, p.ID, -line.Quantity); err != nil {
				return err
			}

			price := p.SellingPrice()
			if line.UnitPrice != nil {
				price = *line.UnitPrice
			}
			inv.AddLine(p.ID, line.Quantity, price, p.WholesaleCost)
		}

		inv.ApplyDiscount(req.DiscountValue)
		if err := inv.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save invoice lines: %w", err)
		}

		// A fully discounted sale moves no cash, so there is nothing to log.
		if !inv.NetTotal.IsPositive() {
			return nil
		}
		log := treasury.NewLog(treasury.DirectionIn, treasury.SourceSale,
			inv.ID, inv.NetTotal, actor.BranchID, actor.Username).
			WithShift(openShift.ID)
		return s.treasury.Record(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale processed",
		"id", inv.ID,
		"lines", len(inv.Lines),
		"net_total", inv.NetTotal,
	)
	return inv, nil
}

// Get returns an invoice with its lines.
func (s *Service) Get(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

// Delete voids a sale: restores the deducted stock, registers a compensating
// cash outflow and soft-deletes the invoice, archiving its final state. The
// stored invoice is never mutated beyond the deletion mark.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID, reason string) error {
	actor, err := s.guard(ctx, authz.ActionDeleteSale)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.Get(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}

		for productID, qty := range inv.SoldQuantities() {
			if err := s.products.AdjustStock(ctx, productID, qty); err != nil {
				return err
			}
		}

		// No compensating outflow when the voided sale never moved cash.
		if inv.NetTotal.IsPositive() {
			openShift, err := s.shifts.GetOpenForUser(ctx, actor.Username)
			if err != nil {
				return err
			}
			log := treasury.NewLog(treasury.DirectionOut, treasury.SourceSaleVoid,
				inv.ID, inv.NetTotal, inv.BranchID, actor.Username)
			if openShift != nil {
				log = log.WithShift(openShift.ID)
			}
			if err := s.treasury.Record(ctx, log); err != nil {
				return err
			}
		}

		inv.MarkDeleted(actor.Username, reason)
		if err := s.repo.MarkDeleted(ctx, inv); err != nil {
			return err
		}

		snapshot, err := archive.Take("sale_invoice", inv.ID, inv, actor.Username, reason)
		if err != nil {
			return err
		}
		return s.sink.Archive(ctx, snapshot)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "id", invoiceID, "reason", reason)
	return nil
}
