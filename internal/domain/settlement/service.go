package settlement

import (
	"context"
	"fmt"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/tx"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/pkg/logger"
)

// RecordRequest describes a supplier payment to record atomically.
type RecordRequest struct {
	SupplierID id.ID

	// PurchaseID ties the payment to one purchase when set. When nil the
	// payment is allocated across the supplier's unpaid purchases oldest
	// first.
	PurchaseID *id.ID

	Amount types.Money
	Notes  string
}

// Service is the supplier-payment transaction processor.
type Service struct {
	repo      Repository
	purchases purchase.Repository
	suppliers supplier.Repository
	treasury  *treasury.Service
	authz     authz.Provider
	txManager tx.Manager
}

// NewService creates a settlement service.
func NewService(
	repo Repository,
	purchases purchase.Repository,
	suppliers supplier.Repository,
	treasuryService *treasury.Service,
	authzProvider authz.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		purchases: purchases,
		suppliers: suppliers,
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

// Record persists a supplier payment, applies it to purchase debt and
// registers the cash outflow, all in one transaction.
//
// A tied payment settles its purchase only; paying more than that purchase's
// remaining debt is rejected. An untied payment walks the supplier's unpaid
// purchases oldest first and allocates until the amount is consumed; any
// amount left after the last unpaid purchase is rejected as an overpayment,
// never stored as negative debt.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*Payment, error) {
	actor, err := s.guard(ctx, authz.ActionRecordSupplierPayment)
	if err != nil {
		return nil, err
	}

	if id.IsNil(req.SupplierID) {
		return nil, apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	var payment *Payment
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.suppliers.Exists(ctx, req.SupplierID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("supplier", req.SupplierID.String())
		}

		payment = NewPayment(actor.BranchID, actor.Username, req.SupplierID, req.Amount)
		payment.Notes = req.Notes

		if req.PurchaseID != nil {
			payment.PurchaseID = req.PurchaseID
			if err := s.settleTied(ctx, payment, *req.PurchaseID); err != nil {
				return err
			}
		} else {
			if err := s.settleOldestFirst(ctx, payment); err != nil {
				return err
			}
		}

		if err := payment.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := s.repo.SaveAllocations(ctx, payment.ID, payment.Allocations); err != nil {
			return fmt.Errorf("save allocations: %w", err)
		}

		log := treasury.NewLog(treasury.DirectionOut, treasury.SourceSupplierPayment,
			payment.ID, payment.Amount, actor.BranchID, actor.Username)
		return s.treasury.Record(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplier payment recorded",
		"id", payment.ID,
		"supplier", payment.SupplierID,
		"amount", payment.Amount,
		"allocations", len(payment.Allocations),
	)
	return payment, nil
}

func (s *Service) settleTied(ctx context.Context, payment *Payment, purchaseID id.ID) error {
	rec, err := s.purchases.GetForUpdate(ctx, purchaseID)
	if err != nil {
		return err
	}
	if rec.DeletionMark {
		return apperror.NewConflict("purchase is deleted").
			WithDetail("purchase_id", rec.ID.String())
	}
	if rec.SupplierID != payment.SupplierID {
		return apperror.NewValidation("purchase belongs to a different supplier").
			WithDetail("purchase_id", rec.ID.String())
	}

	if err := rec.ApplyPayment(payment.Amount); err != nil {
		return err
	}
	if err := s.purchases.UpdatePayment(ctx, rec); err != nil {
		return err
	}

	payment.Allocate(rec.ID, payment.Amount)
	return nil
}

func (s *Service) settleOldestFirst(ctx context.Context, payment *Payment) error {
	unpaid, err := s.purchases.ListUnpaidBySupplier(ctx, payment.SupplierID)
	if err != nil {
		return fmt.Errorf("list unpaid purchases: %w", err)
	}

	left := payment.Amount
	for i := range unpaid {
		if !left.IsPositive() {
			break
		}
		rec := &unpaid[i]

		portion := left
		if portion.GreaterThan(rec.Remaining) {
			portion = rec.Remaining
		}

		if err := rec.ApplyPayment(portion); err != nil {
			return err
		}
		if err := s.purchases.UpdatePayment(ctx, rec); err != nil {
			return err
		}

		payment.Allocate(rec.ID, portion)
		left = left.Sub(portion)
	}

	if left.IsPositive() {
		return apperror.NewOverpayment("payment exceeds supplier debt").
			WithDetail("supplier_id", payment.SupplierID.String()).
			WithDetail("amount", payment.Amount).
			WithDetail("excess", left)
	}
	return nil
}

// Get returns a payment with its allocations.
func (s *Service) Get(ctx context.Context, paymentID id.ID) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.repo.GetAllocations(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	payment.Allocations = allocations
	return payment, nil
}
