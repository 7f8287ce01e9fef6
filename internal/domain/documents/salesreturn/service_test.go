package salesreturn

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
	"dukkan/internal/domain/documents/sale"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/domain/shift"
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
	return nil, apperror.NewNotFound("sales return", returnID.String())
}

func (r *fakeReturnRepo) GetLines(ctx context.Context, returnID id.ID) ([]Line, error) {
	return r.lines[returnID], nil
}

func (r *fakeReturnRepo) ReturnedQuantities(ctx context.Context, saleID id.ID) (map[id.ID]int64, error) {
	out := make(map[id.ID]int64)
	for _, ret := range r.returns {
		if ret.SaleID != saleID || ret.DeletionMark {
			continue
		}
		for _, line := range r.lines[ret.ID] {
			out[line.ProductID] += line.Quantity
		}
	}
	return out, nil
}

type fakeSaleRepo struct {
	invoice *sale.Invoice
}

func (r *fakeSaleRepo) Create(ctx context.Context, inv *sale.Invoice) error { return nil }

func (r *fakeSaleRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []sale.Line) error {
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, invoiceID id.ID) (*sale.Invoice, error) {
	if r.invoice == nil || r.invoice.ID != invoiceID {
		return nil, apperror.NewNotFound("sale", invoiceID.String())
	}
	cp := *r.invoice
	return &cp, nil
}

func (r *fakeSaleRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]sale.Line, error) {
	return r.invoice.Lines, nil
}

func (r *fakeSaleRepo) MarkDeleted(ctx context.Context, inv *sale.Invoice) error { return nil }

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
	p := product.New("main", "item", types.Zero(), types.MustMoney("10.00"))
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

type fakeShiftRepo struct {
	open *shift.Shift
}

func (r *fakeShiftRepo) Create(ctx context.Context, s *shift.Shift) error { return nil }

func (r *fakeShiftRepo) GetByID(ctx context.Context, shiftID id.ID) (*shift.Shift, error) {
	return r.open, nil
}

func (r *fakeShiftRepo) GetOpenForUser(ctx context.Context, username string) (*shift.Shift, error) {
	return r.open, nil
}

func (r *fakeShiftRepo) Update(ctx context.Context, s *shift.Shift) error { return nil }

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
	products  *fakeProductRepo
	treasury  *fakeTreasuryRepo
	saleID    id.ID
	productID id.ID
	ctx       context.Context
}

// newFixture builds a service around a sale of 5 units at 10.00 each.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	openShift := shift.Open("main", "cashier1", types.Zero())
	productID := id.New()

	inv := sale.NewInvoice("main", "cashier1", openShift.ID)
	inv.AddLine(productID, 5, types.MustMoney("10.00"), types.MustMoney("6.00"))

	products := &fakeProductRepo{stock: map[id.ID]int64{productID: 0}}
	treasuryRepo := &fakeTreasuryRepo{}
	provider := authz.NewStaticProvider(authz.NewConfig())

	svc := NewService(
		newFakeReturnRepo(),
		&fakeSaleRepo{invoice: inv},
		products,
		&fakeShiftRepo{open: openShift},
		treasury.NewService(treasuryRepo, provider),
		provider,
		fakeTxManager{},
	)

	ctx := appctx.WithActor(context.Background(), &appctx.ActorContext{
		Username: "cashier1",
		Role:     "cashier",
		BranchID: "main",
	})

	return &fixture{
		service:   svc,
		products:  products,
		treasury:  treasuryRepo,
		saleID:    inv.ID,
		productID: productID,
		ctx:       ctx,
	}
}

func TestService_Process(t *testing.T) {
	f := newFixture(t)

	ret, err := f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 3}},
	})
	require.NoError(t, err)

	// Refund at the original sale price, stock restored, cash out.
	assert.True(t, ret.RefundTotal.Equal(types.MustMoney("30.00")))
	assert.Equal(t, int64(3), f.products.stock[f.productID])
	require.Len(t, f.treasury.logs, 1)
	assert.Equal(t, treasury.DirectionOut, f.treasury.logs[0].Direction)
	assert.Equal(t, treasury.SourceSalesReturn, f.treasury.logs[0].Source)
	assert.NotNil(t, f.treasury.logs[0].ShiftID)
}

func TestService_Process_CapShrinksAcrossPartialReturns(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 3}},
	})
	require.NoError(t, err)

	// 2 returnable remain; asking for 3 names the product and the cap.
	_, err = f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 3}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	assert.Equal(t, int64(2), appErr.Details["returnable"])

	_, err = f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 2}},
	})
	require.NoError(t, err)

	// The cap is exhausted now.
	_, err = f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
}

func TestService_Process_ProductNotOnSale(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: id.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
}

func TestService_Process_NoOpenShift(t *testing.T) {
	f := newFixture(t)
	svc := NewService(
		newFakeReturnRepo(),
		&fakeSaleRepo{},
		f.products,
		&fakeShiftRepo{open: nil},
		treasury.NewService(f.treasury, authz.NewStaticProvider(authz.NewConfig())),
		authz.NewStaticProvider(authz.NewConfig()),
		fakeTxManager{},
	)

	_, err := svc.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoOpenShift))
}

func TestService_Process_DeniedByAuthz(t *testing.T) {
	f := newFixture(t)

	cfg := authz.NewConfig()
	cfg.RoleHiddenSections["cashier"] = authz.NewSectionSet(authz.SectionReturns)
	provider := authz.NewStaticProvider(cfg)

	svc := NewService(
		newFakeReturnRepo(),
		&fakeSaleRepo{},
		f.products,
		&fakeShiftRepo{},
		treasury.NewService(f.treasury, provider),
		provider,
		fakeTxManager{},
	)

	_, err := svc.Process(f.ctx, ProcessRequest{
		SaleID: f.saleID,
		Lines:  []LineRequest{{ProductID: f.productID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAuthorizationDenied))
}
