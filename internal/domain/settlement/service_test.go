package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "dukkan/internal/core/context"
	"dukkan/internal/core/apperror"
	"dukkan/internal/core/authz"
	"dukkan/internal/core/id"
	"dukkan/internal/core/types"
	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/domain/registers/treasury"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePaymentRepo struct {
	payments    []*Payment
	allocations map[id.ID][]Allocation
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{allocations: make(map[id.ID][]Allocation)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) SaveAllocations(ctx context.Context, paymentID id.ID, allocations []Allocation) error {
	r.allocations[paymentID] = allocations
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	for _, p := range r.payments {
		if p.ID == paymentID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("supplier payment", paymentID.String())
}

func (r *fakePaymentRepo) GetAllocations(ctx context.Context, paymentID id.ID) ([]Allocation, error) {
	return r.allocations[paymentID], nil
}

func (r *fakePaymentRepo) ListBySupplier(ctx context.Context, supplierID id.ID) ([]Payment, error) {
	return nil, nil
}

// fakePurchaseRepo keeps purchases in insertion order; ListUnpaidBySupplier
// relies on that order the way the store orders by created_at.
type fakePurchaseRepo struct {
	records []*purchase.Record
}

func (r *fakePurchaseRepo) Create(ctx context.Context, rec *purchase.Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakePurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	return nil
}

func (r *fakePurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	for _, rec := range r.records {
		if rec.ID == purchaseID {
			return rec, nil
		}
	}
	return nil, apperror.NewNotFound("purchase", purchaseID.String())
}

func (r *fakePurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	return r.GetByID(ctx, purchaseID)
}

func (r *fakePurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	return nil, nil
}

func (r *fakePurchaseRepo) ListUnpaidBySupplier(ctx context.Context, supplierID id.ID) ([]purchase.Record, error) {
	out := make([]purchase.Record, 0)
	for _, rec := range r.records {
		if rec.SupplierID == supplierID && !rec.DeletionMark && rec.Remaining.IsPositive() {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) UpdatePayment(ctx context.Context, rec *purchase.Record) error {
	for i, existing := range r.records {
		if existing.ID == rec.ID {
			cp := *rec
			r.records[i] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("purchase", rec.ID.String())
}

func (r *fakePurchaseRepo) MarkDeleted(ctx context.Context, rec *purchase.Record) error {
	return nil
}

type fakeSupplierRepo struct {
	known map[id.ID]bool
}

func (r *fakeSupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error { return nil }

func (r *fakeSupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	return nil, apperror.NewNotFound("supplier", supplierID.String())
}

func (r *fakeSupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	return r.known[supplierID], nil
}

func (r *fakeSupplierRepo) ComputeTotals(ctx context.Context, supplierID id.ID) (supplier.Totals, error) {
	return supplier.Totals{}, nil
}

type fakeTreasuryRepo struct {
	logs []*treasury.Log
}

func (r *fakeTreasuryRepo) Append(ctx context.Context, log *treasury.Log) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeTreasuryRepo) Balance(ctx context.Context, filter treasury.BalanceFilter) (types.Money, error) {
	return types.Zero(), nil
}

func (r *fakeTreasuryRepo) SumForShift(ctx context.Context, shiftID id.ID, sources []treasury.Source) (types.Money, error) {
	return types.Zero(), nil
}

func (r *fakeTreasuryRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]treasury.Log, error) {
	return nil, nil
}

type fixture struct {
	service    *Service
	payments   *fakePaymentRepo
	purchases  *fakePurchaseRepo
	treasury   *fakeTreasuryRepo
	supplierID id.ID
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	supplierID := id.New()
	payments := newFakePaymentRepo()
	purchases := &fakePurchaseRepo{}
	treasuryRepo := &fakeTreasuryRepo{}
	provider := authz.NewStaticProvider(authz.NewConfig())

	svc := NewService(
		payments,
		purchases,
		&fakeSupplierRepo{known: map[id.ID]bool{supplierID: true}},
		treasury.NewService(treasuryRepo, provider),
		provider,
		fakeTxManager{},
	)

	ctx := appctx.WithActor(context.Background(), &appctx.ActorContext{
		Username: "manager",
		Role:     "manager",
		BranchID: "main",
	})

	return &fixture{
		service:    svc,
		payments:   payments,
		purchases:  purchases,
		treasury:   treasuryRepo,
		supplierID: supplierID,
		ctx:        ctx,
	}
}

func (f *fixture) addCreditPurchase(t *testing.T, total string) *purchase.Record {
	t.Helper()
	rec := purchase.NewRecord("main", "manager", f.supplierID)
	rec.AddLine(id.New(), 1, types.MustMoney(total))
	require.NoError(t, rec.SetInitialPayment(types.Zero()))
	require.NoError(t, f.purchases.Create(f.ctx, rec))
	return rec
}

func TestService_Record_OldestFirstAllocation(t *testing.T) {
	f := newFixture(t)
	oldest := f.addCreditPurchase(t, "50.00")
	newest := f.addCreditPurchase(t, "100.00")

	payment, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: f.supplierID,
		Amount:     types.MustMoney("120.00"),
	})
	require.NoError(t, err)

	// Oldest purchase absorbed fully, the rest went to the next one.
	require.Len(t, payment.Allocations, 2)
	assert.Equal(t, oldest.ID, payment.Allocations[0].PurchaseID)
	assert.True(t, payment.Allocations[0].Amount.Equal(types.MustMoney("50.00")))
	assert.Equal(t, newest.ID, payment.Allocations[1].PurchaseID)
	assert.True(t, payment.Allocations[1].Amount.Equal(types.MustMoney("70.00")))

	settled, err := f.purchases.GetByID(f.ctx, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusSettled, settled.Status)
	assert.True(t, settled.Remaining.IsZero())

	partial, err := f.purchases.GetByID(f.ctx, newest.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCredit, partial.Status)
	assert.True(t, partial.Remaining.Equal(types.MustMoney("30.00")))

	// Cash outflow registered for the full payment.
	require.Len(t, f.treasury.logs, 1)
	assert.Equal(t, treasury.DirectionOut, f.treasury.logs[0].Direction)
	assert.Equal(t, treasury.SourceSupplierPayment, f.treasury.logs[0].Source)
	assert.True(t, f.treasury.logs[0].Amount.Equal(types.MustMoney("120.00")))
}

func TestService_Record_OverpaymentRejected(t *testing.T) {
	f := newFixture(t)
	f.addCreditPurchase(t, "50.00")
	f.addCreditPurchase(t, "100.00")

	_, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: f.supplierID,
		Amount:     types.MustMoney("150.01"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))

	// Nothing persisted, no cash moved.
	assert.Empty(t, f.payments.payments)
	assert.Empty(t, f.treasury.logs)
}

func TestService_Record_TiedPayment(t *testing.T) {
	f := newFixture(t)
	rec := f.addCreditPurchase(t, "80.00")

	payment, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: f.supplierID,
		PurchaseID: &rec.ID,
		Amount:     types.MustMoney("80.00"),
	})
	require.NoError(t, err)

	require.Len(t, payment.Allocations, 1)
	assert.Equal(t, rec.ID, payment.Allocations[0].PurchaseID)

	settled, err := f.purchases.GetByID(f.ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusSettled, settled.Status)
}

func TestService_Record_TiedOverpaymentRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.addCreditPurchase(t, "80.00")

	_, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: f.supplierID,
		PurchaseID: &rec.ID,
		Amount:     types.MustMoney("80.01"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))
}

func TestService_Record_TiedWrongSupplier(t *testing.T) {
	f := newFixture(t)
	rec := f.addCreditPurchase(t, "80.00")
	rec.SupplierID = id.New()

	_, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: f.supplierID,
		PurchaseID: &rec.ID,
		Amount:     types.MustMoney("10.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Record_UnknownSupplier(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Record(f.ctx, RecordRequest{
		SupplierID: id.New(),
		Amount:     types.MustMoney("10.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}
