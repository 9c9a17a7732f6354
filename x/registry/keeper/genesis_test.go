package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	"github.com/asle-chain/asle/x/registry"
	"github.com/asle-chain/asle/x/registry/types"
)

func TestInitGenesisInstallsSelfRoutes(t *testing.T) {
	k, _, ctx := keepertest.RegistryKeeper(t)
	owner := keepertest.TestAddress(0x01)

	require.NoError(t, k.InitGenesis(ctx, registry.DefaultGenesis(owner)))

	got, ok := k.Owner(ctx)
	require.True(t, ok)
	require.Equal(t, owner, got)

	// Every self entry point resolves to the self address.
	for _, id := range registry.SelfFunctionIDs() {
		module, ok := k.Resolve(ctx, id)
		require.True(t, ok)
		require.Equal(t, k.SelfAddress(), module)
	}

	exported := k.ExportGenesis(ctx)
	require.Equal(t, owner.String(), exported.Owner)
	require.ElementsMatch(t, registry.SelfFunctionIDs(), exported.SelfFunctionIDs)
}

func TestSelfRoutesAreImmutable(t *testing.T) {
	k, table, ctx := keepertest.RegistryKeeper(t)
	owner := keepertest.TestAddress(0x01)
	require.NoError(t, k.InitGenesis(ctx, registry.DefaultGenesis(owner)))

	usurper := keepertest.NewStubModule("usurper")
	require.NoError(t, table.Deploy(usurper))

	err := k.RemoveRoutes(ctx, nil, []types.FunctionID{registry.FIDApplyCut})
	require.ErrorIs(t, err, types.ErrImmutableRoute)

	err = k.ReplaceRoutes(ctx, usurper.Addr, []types.FunctionID{registry.FIDApplyCut})
	require.ErrorIs(t, err, types.ErrImmutableRoute)

	// The permanent routes also resist removal through a cut.
	err = k.ApplyCut(ctx, owner, []types.CutOp{
		{Action: types.CutRemove, FunctionIDs: []types.FunctionID{registry.FIDResolve}},
	}, nil, nil)
	require.ErrorIs(t, err, types.ErrImmutableRoute)

	module, ok := k.Resolve(ctx, registry.FIDResolve)
	require.True(t, ok)
	require.Equal(t, k.SelfAddress(), module)
}

func TestInitGenesisValidation(t *testing.T) {
	k, _, ctx := keepertest.RegistryKeeper(t)

	err := k.InitGenesis(ctx, types.GenesisState{})
	require.ErrorIs(t, err, types.ErrInvalidGenesis)

	err = k.InitGenesis(ctx, types.GenesisState{Owner: "not-bech32"})
	require.ErrorIs(t, err, types.ErrInvalidGenesis)

	dup := registry.FIDResolve
	err = k.InitGenesis(ctx, types.GenesisState{
		Owner:           keepertest.TestAddress(0x01).String(),
		SelfFunctionIDs: []types.FunctionID{dup, dup},
	})
	require.ErrorIs(t, err, types.ErrInvalidGenesis)
}
