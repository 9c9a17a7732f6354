package keeper_test

import (
	"encoding/json"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	"github.com/asle-chain/asle/x/registry/keeper"
	"github.com/asle-chain/asle/x/registry/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

type cutFixture struct {
	keeper keeper.Keeper
	ctx    sdk.Context
	owner  sdk.AccAddress
	modA   *keepertest.StubModule
	modB   *keepertest.StubModule
	deploy func(m types.Module) error
}

func newCutFixture(t *testing.T) *cutFixture {
	owner := keepertest.TestAddress(0x11)
	k, table, ctx := keepertest.InitializedRegistryKeeper(t, owner)

	f := &cutFixture{
		keeper: k,
		ctx:    ctx,
		owner:  owner,
		modA:   keepertest.NewStubModule("cut_mod_a"),
		modB:   keepertest.NewStubModule("cut_mod_b"),
		deploy: table.Deploy,
	}
	require.NoError(t, f.deploy(f.modA))
	require.NoError(t, f.deploy(f.modB))
	return f
}

// snapshot captures the observable registry state for byte-level rollback
// comparisons.
func (f *cutFixture) snapshot() string {
	bz, err := json.Marshal(f.keeper.Facets(f.ctx))
	if err != nil {
		panic(err)
	}
	return string(bz)
}

func TestApplyCutBatch(t *testing.T) {
	f := newCutFixture(t)

	ops := []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("one()"), fid("two()")),
		keeper.AddOp(f.modB.Addr, fid("three()")),
		keeper.ReplaceOp(f.modB.Addr, fid("one()")),
		keeper.RemoveOp(fid("two()")),
	}
	require.NoError(t, f.keeper.ApplyCut(f.ctx, f.owner, ops, nil, nil))

	module, ok := f.keeper.Resolve(f.ctx, fid("one()"))
	require.True(t, ok)
	require.Equal(t, f.modB.Addr, module)

	_, ok = f.keeper.Resolve(f.ctx, fid("two()"))
	require.False(t, ok)

	module, ok = f.keeper.Resolve(f.ctx, fid("three()"))
	require.True(t, ok)
	require.Equal(t, f.modB.Addr, module)
}

func TestApplyCutOwnerGate(t *testing.T) {
	f := newCutFixture(t)

	stranger := keepertest.TestAddress(0x22)
	err := f.keeper.ApplyCut(f.ctx, stranger, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("gated()")),
	}, nil, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestApplyCutRollsBackOnFailedOp(t *testing.T) {
	f := newCutFixture(t)

	require.NoError(t, f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("keep()")),
	}, nil, nil))
	before := f.snapshot()

	// Second op collides with the first op's own identifier; everything in
	// the batch must unwind, including the successful first op.
	err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modB.Addr, fid("fresh()")),
		keeper.AddOp(f.modB.Addr, fid("keep()")),
	}, nil, nil)
	require.ErrorIs(t, err, types.ErrRouteExists)

	require.Equal(t, before, f.snapshot())
	_, ok := f.keeper.Resolve(f.ctx, fid("fresh()"))
	require.False(t, ok)
}

func TestApplyCutRejectsUnknownAction(t *testing.T) {
	f := newCutFixture(t)
	before := f.snapshot()

	err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		{Action: types.CutAction(7), Module: f.modA.Addr, FunctionIDs: []types.FunctionID{fid("x()")}},
	}, nil, nil)
	require.ErrorIs(t, err, types.ErrInvalidCutAction)
	require.Equal(t, before, f.snapshot())
}

func TestApplyCutInitializerContract(t *testing.T) {
	f := newCutFixture(t)
	initID := fid("seed(payload)")
	f.modA.IDs = append(f.modA.IDs, initID)

	tests := []struct {
		name        string
		initializer sdk.AccAddress
		payload     []byte
		wantErr     error
	}{
		{
			name:        "null initializer with payload",
			initializer: nil,
			payload:     []byte("unexpected"),
			wantErr:     types.ErrUnexpectedInitPayload,
		},
		{
			name:        "initializer with empty payload",
			initializer: f.modA.Addr,
			payload:     nil,
			wantErr:     types.ErrEmptyInitPayload,
		},
		{
			name:        "initializer without code",
			initializer: keepertest.TestAddress(0x33),
			payload:     append(initID.Bytes(), []byte("{}")...),
			wantErr:     types.ErrModuleHasNoCode,
		},
		{
			name:        "unknown entry point",
			initializer: f.modA.Addr,
			payload:     append(fid("absent()").Bytes(), []byte("{}")...),
			wantErr:     types.ErrInitializerFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := f.snapshot()
			err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
				keeper.AddOp(f.modB.Addr, fid("batch()")),
			}, tc.initializer, tc.payload)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, before, f.snapshot(), "failed cut must roll back")
		})
	}
}

func TestApplyCutInitializerRunsInPlace(t *testing.T) {
	f := newCutFixture(t)

	// The initializer writes through the same store the cut mutated; its
	// write must land atomically with the route changes.
	initID := fid("seed(payload)")
	marker := []byte("seeded")
	var sawRoute bool
	f.modA.Handlers[initID] = func(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
		// The batch's routes are already visible to the initializer.
		_, sawRoute = f.keeper.Resolve(ctx, fid("batch()"))
		ctx.KVStore(f.keeper.StoreKey()).Set([]byte("init_marker"), marker)
		return nil, nil
	}

	require.NoError(t, f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("batch()")),
	}, f.modA.Addr, append(initID.Bytes(), []byte(`{}`)...)))

	require.True(t, sawRoute)
	require.Equal(t, marker, f.ctx.KVStore(f.keeper.StoreKey()).Get([]byte("init_marker")))
}

func TestApplyCutInitializerFailureRollsBack(t *testing.T) {
	f := newCutFixture(t)
	before := f.snapshot()

	initID := fid("seed(payload)")
	f.modA.Handlers[initID] = func(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
		ctx.KVStore(f.keeper.StoreKey()).Set([]byte("leak"), []byte("no"))
		return nil, types.ErrInvalidPayload.Wrap("seed refused")
	}

	err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("batch()")),
	}, f.modA.Addr, append(initID.Bytes(), []byte(`{}`)...))

	// The inner reason must survive the unwind.
	require.ErrorIs(t, err, types.ErrInvalidPayload)
	require.Contains(t, err.Error(), "seed refused")

	require.Equal(t, before, f.snapshot())
	require.Nil(t, f.ctx.KVStore(f.keeper.StoreKey()).Get([]byte("leak")))
}

func TestApplyCutInitializerPanicIsGenericFailure(t *testing.T) {
	f := newCutFixture(t)
	before := f.snapshot()

	initID := fid("seed(payload)")
	f.modA.Handlers[initID] = func(sdk.Context, sdk.AccAddress, []byte) ([]byte, error) {
		panic("no reason given")
	}

	err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("batch()")),
	}, f.modA.Addr, append(initID.Bytes(), []byte(`{}`)...))
	require.ErrorIs(t, err, types.ErrInitializerFailed)
	require.Equal(t, before, f.snapshot())
}

func TestApplyCutInitializerIsGuarded(t *testing.T) {
	f := newCutFixture(t)

	// A guarded call nested inside the initializer must hit the latch.
	initID := fid("seed(payload)")
	var nested error
	f.modA.Handlers[initID] = func(ctx sdk.Context, _ sdk.AccAddress, _ []byte) ([]byte, error) {
		nested = guard.Enter(ctx.KVStore(f.keeper.StoreKey()))
		return nil, nested
	}

	err := f.keeper.ApplyCut(f.ctx, f.owner, []types.CutOp{
		keeper.AddOp(f.modA.Addr, fid("batch()")),
	}, f.modA.Addr, append(initID.Bytes(), []byte(`{}`)...))

	require.ErrorIs(t, nested, guard.ErrReentrantCall)
	require.ErrorIs(t, err, guard.ErrReentrantCall)

	// The failed cut unwound entirely, latch writes included.
	require.NotEqual(t, guard.Locked, guard.State(f.ctx.KVStore(f.keeper.StoreKey())))
}
