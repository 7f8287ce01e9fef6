package shift

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
	"dukkan/internal/domain/registers/treasury"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeShiftRepo struct {
	shifts map[id.ID]*Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[id.ID]*Shift)}
}

func (r *fakeShiftRepo) Create(ctx context.Context, s *Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) GetByID(ctx context.Context, shiftID id.ID) (*Shift, error) {
	s, ok := r.shifts[shiftID]
	if !ok {
		return nil, apperror.NewNotFound("shift", shiftID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *fakeShiftRepo) GetOpenForUser(ctx context.Context, username string) (*Shift, error) {
	for _, s := range r.shifts {
		if s.Username == username && s.IsOpen() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeShiftRepo) Update(ctx context.Context, s *Shift) error {
	r.shifts[s.ID] = s
	return nil
}

type fakeTreasuryRepo struct {
	shiftSum types.Money
}

func (r *fakeTreasuryRepo) Append(ctx context.Context, log *treasury.Log) error { return nil }

func (r *fakeTreasuryRepo) Balance(ctx context.Context, filter treasury.BalanceFilter) (types.Money, error) {
	return types.Zero(), nil
}

func (r *fakeTreasuryRepo) SumForShift(ctx context.Context, shiftID id.ID, sources []treasury.Source) (types.Money, error) {
	return r.shiftSum, nil
}

func (r *fakeTreasuryRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]treasury.Log, error) {
	return nil, nil
}

func actorCtx(username string) context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{
		Username: username,
		Role:     "cashier",
		BranchID: "main",
	})
}

func newTestService(repo Repository, drawer types.Money) *Service {
	provider := authz.NewStaticProvider(authz.NewConfig())
	return NewService(repo, &fakeTreasuryRepo{shiftSum: drawer}, provider, fakeTxManager{})
}

func TestService_Open(t *testing.T) {
	repo := newFakeShiftRepo()
	svc := newTestService(repo, types.Zero())
	ctx := actorCtx("cashier1")

	sh, err := svc.Open(ctx, types.MustMoney("500.00"))
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, sh.Status)
	assert.True(t, sh.OpeningBalance.Equal(types.MustMoney("500.00")))

	// A second open shift for the same actor is rejected.
	_, err = svc.Open(ctx, types.MustMoney("100.00"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestService_Open_NegativeBalance(t *testing.T) {
	svc := newTestService(newFakeShiftRepo(), types.Zero())

	_, err := svc.Open(actorCtx("cashier1"), types.MustMoney("-1.00"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Close_SnapshotsDifference(t *testing.T) {
	repo := newFakeShiftRepo()
	// Drawer events for the shift sum to +300.
	svc := newTestService(repo, types.MustMoney("300.00"))
	ctx := actorCtx("cashier1")

	sh, err := svc.Open(ctx, types.MustMoney("500.00"))
	require.NoError(t, err)

	closed, err := svc.Close(ctx, sh.ID, types.MustMoney("790.00"), "drawer short")
	require.NoError(t, err)

	require.NotNil(t, closed.ExpectedBalance)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.ExpectedBalance.Equal(types.MustMoney("800.00")))
	assert.True(t, closed.ActualBalance.Equal(types.MustMoney("790.00")))
	assert.True(t, closed.Difference.Equal(types.MustMoney("-10.00")))
	assert.Equal(t, StatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
}

func TestService_Close_AlreadyClosed(t *testing.T) {
	repo := newFakeShiftRepo()
	svc := newTestService(repo, types.Zero())
	ctx := actorCtx("cashier1")

	sh, err := svc.Open(ctx, types.Zero())
	require.NoError(t, err)

	_, err = svc.Close(ctx, sh.ID, types.Zero(), "")
	require.NoError(t, err)

	_, err = svc.Close(ctx, sh.ID, types.Zero(), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestService_Close_Unauthenticated(t *testing.T) {
	svc := newTestService(newFakeShiftRepo(), types.Zero())

	_, err := svc.Close(context.Background(), id.New(), types.Zero(), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
