package purchasereturn

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
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/domain/registers/treasury"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeReturnRepo struct {
	returns []*Return
	lines   map[id.ID][]Line
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{lines: make(map[id.ID][]Line)}
}

func (r *fakeReturnRepo) Create(ctx context.Context, ret *Return) error {
	r.returns = append(r.returns, ret)
	return nil
}

func (r *fakeReturnRepo) SaveLines(ctx context.Context, returnID id.ID, lines []Line) error {
	r.lines[returnID] = lines
	return nil
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*Return, error) {
	for _, ret := range r.returns {
		if ret.ID == returnID {
			return ret, nil
		}
	}
	return nil, apperror.NewNotFound("purchase return", returnID.String())
}

func (r *fakeReturnRepo) GetLines(ctx context.Context, returnID id.ID) ([]Line, error) {
	return r.lines[returnID], nil
}

func (r *fakeReturnRepo) ReturnedQuantities(ctx context.Context, purchaseID id.ID) (map[id.ID]int64, error) {
	out := make(map[id.ID]int64)
	for _, ret := range r.returns {
		if ret.PurchaseID != purchaseID || ret.DeletionMark {
			continue
		}
		for _, line := range r.lines[ret.ID] {
			out[line.ProductID] += line.Quantity
		}
	}
	return out, nil
}

type fakePurchaseRepo struct {
	record *purchase.Record
}

func (r *fakePurchaseRepo) Create(ctx context.Context, rec *purchase.Record) error { return nil }

func (r *fakePurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	return nil
}

func (r *fakePurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	if r.record == nil || r.record.ID != purchaseID {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return r.record, nil
}

func (r *fakePurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Record, error) {
	return r.GetByID(ctx, purchaseID)
}

func (r *fakePurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	return r.record.Lines, nil
}

func (r *fakePurchaseRepo) ListUnpaidBySupplier(ctx context.Context, supplierID id.ID) ([]purchase.Record, error) {
	return nil, nil
}

func (r *fakePurchaseRepo) UpdatePayment(ctx context.Context, rec *purchase.Record) error {
	r.record = rec
	return nil
}

func (r *fakePurchaseRepo) MarkDeleted(ctx context.Context, rec *purchase.Record) error { return nil }

type fakeProductRepo struct {
	stock map[id.ID]int64
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetForUpdate(ctx, productID)
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	stock, ok := r.stock[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	p := product.New("main", "item", types.MustMoney("4.00"), types.MustMoney("10.00"))
	p.ID = productID
	p.Stock = stock
	return p, nil
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) error {
	next := r.stock[productID] + delta
	if next < 0 {
		return apperror.NewInsufficientStock(productID.String(), -delta, r.stock[productID])
	}
	r.stock[productID] = next
	return nil
}

func (r *fakeProductRepo) ListLowStock(ctx context.Context, branchID string) ([]product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.stock[productID]
	return ok, nil
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
	service   *Service
	purchases *fakePurchaseRepo
	products  *fakeProductRepo
	treasury  *fakeTreasuryRepo
	productID id.ID
	ctx       context.Context
}

// newFixture builds a service around a credit purchase of 10 units at 4.00,
// with 2.00 paid upfront per unit block (paid 10.00, remaining 30.00).
func newFixture(t *testing.T, stock int64) *fixture {
	t.Helper()

	productID := id.New()
	rec := purchase.NewRecord("main", "manager", id.New())
	rec.AddLine(productID, 10, types.MustMoney("4.00"))
	require.NoError(t, rec.SetInitialPayment(types.MustMoney("10.00")))

	purchases := &fakePurchaseRepo{record: rec}
	products := &fakeProductRepo{stock: map[id.ID]int64{productID: stock}}
	treasuryRepo := &fakeTreasuryRepo{}
	provider := authz.NewStaticProvider(authz.NewConfig())

	svc := NewService(
		newFakeReturnRepo(),
		purchases,
		products,
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
		service:   svc,
		purchases: purchases,
		products:  products,
		treasury:  treasuryRepo,
		productID: productID,
		ctx:       ctx,
	}
}

func TestService_Process_CashRefund(t *testing.T) {
	f := newFixture(t, 10)

	ret, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundCash,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 3}},
	})
	require.NoError(t, err)

	// Refund at original cost, stock deducted, drawer inflow registered.
	assert.True(t, ret.RefundTotal.Equal(types.MustMoney("12.00")))
	assert.Equal(t, int64(7), f.products.stock[f.productID])
	require.Len(t, f.treasury.logs, 1)
	assert.Equal(t, treasury.DirectionIn, f.treasury.logs[0].Direction)
	assert.Equal(t, treasury.SourcePurchaseReturn, f.treasury.logs[0].Source)
}

func TestService_Process_DebtRefund(t *testing.T) {
	f := newFixture(t, 10)

	ret, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundDebt,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.True(t, ret.RefundTotal.Equal(types.MustMoney("20.00")))

	// Debt refund moves no cash; remaining and total both shrink.
	assert.Empty(t, f.treasury.logs)
	rec := f.purchases.record
	assert.True(t, rec.Remaining.Equal(types.MustMoney("10.00")))
	assert.True(t, rec.Total.Equal(types.MustMoney("20.00")))
	assert.True(t, rec.Paid.Equal(types.MustMoney("10.00")))
}

func TestService_Process_DebtRefundBeyondRemaining(t *testing.T) {
	f := newFixture(t, 10)

	// 8 units at 4.00 = 32.00 > remaining 30.00.
	_, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundDebt,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 8}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))
}

func TestService_Process_GoodsAlreadySold(t *testing.T) {
	// Only 2 units left on the shelf out of 10 received.
	f := newFixture(t, 2)

	_, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundCash,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
}

func TestService_Process_CapAcrossReturns(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundCash,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 6}},
	})
	require.NoError(t, err)

	// Only 4 returnable remain out of the 10 received.
	_, err = f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: RefundCash,
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 5}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
}

func TestService_Process_UnknownRefundMethod(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.service.Process(f.ctx, ProcessRequest{
		PurchaseID:   f.purchases.record.ID,
		RefundMethod: "voucher",
		Lines:        []LineRequest{{ProductID: f.productID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
