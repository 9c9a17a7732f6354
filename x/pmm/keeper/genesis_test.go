package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
	"github.com/asle-chain/asle/x/pmm/types"
)

func genesisPool(id uint64, creator sdk.AccAddress, shares math.Int) types.Pool {
	return types.Pool{
		ID:                  id,
		BaseDenom:           "ubase",
		QuoteDenom:          "uquote",
		BaseReserve:         math.NewInt(10000),
		QuoteReserve:        math.NewInt(50000),
		VirtualBaseReserve:  math.NewInt(10000),
		VirtualQuoteReserve: math.NewInt(50000),
		K:                   dec("0.5"),
		OraclePrice:         dec("2.0"),
		TotalShares:         shares,
		Active:              true,
		Creator:             creator.String(),
	}
}

func TestGenesisRoundTrip(t *testing.T) {
	k, _, ctx := keepertest.PMMKeeper(t)
	provider := keepertest.TestAddress(0x21)

	gs := types.GenesisState{
		Params:     types.DefaultParams(),
		NextPoolID: 3,
		Pools: []types.Pool{
			genesisPool(1, provider, math.NewInt(22360)),
			genesisPool(2, provider, math.NewInt(22360)),
		},
		Positions: []types.Position{
			{PoolID: 1, Provider: provider.String(), Shares: math.NewInt(22360)},
			{PoolID: 2, Provider: provider.String(), Shares: math.NewInt(22360)},
		},
		PoolFees: []types.PoolFee{
			{PoolID: 1, Denom: "uquote", Amount: math.NewInt(96)},
		},
		ProtocolFees: []types.ProtocolFee{
			{Denom: "uquote", Amount: math.NewInt(24)},
		},
	}
	require.NoError(t, k.InitGenesis(ctx, gs))

	// State landed where the operations expect it.
	require.Equal(t, uint64(3), k.GetNextPoolID(ctx))
	require.Equal(t, []uint64{1, 2}, k.PoolsByPair(ctx, "ubase", "uquote"))
	require.Equal(t, math.NewInt(22360), k.GetShareBalance(ctx, 1, provider))
	require.Equal(t, math.NewInt(96), k.GetPoolFees(ctx, 1, "uquote"))
	require.Equal(t, math.NewInt(24), k.GetProtocolFees(ctx, "uquote"))

	_, broken := pmmkeeper.AllInvariants(k)(ctx)
	require.False(t, broken)

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Equal(t, gs.Params, exported.Params)
	require.Equal(t, gs.NextPoolID, exported.NextPoolID)
	require.Equal(t, gs.Pools, exported.Pools)
	require.ElementsMatch(t, gs.Positions, exported.Positions)
	require.Equal(t, gs.PoolFees, exported.PoolFees)
	require.Equal(t, gs.ProtocolFees, exported.ProtocolFees)
}

func TestGenesisValidation(t *testing.T) {
	provider := keepertest.TestAddress(0x21)

	base := func() types.GenesisState {
		return types.GenesisState{
			Params:     types.DefaultParams(),
			NextPoolID: 2,
			Pools:      []types.Pool{genesisPool(1, provider, math.NewInt(100))},
			Positions: []types.Position{
				{PoolID: 1, Provider: provider.String(), Shares: math.NewInt(100)},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(gs *types.GenesisState)
	}{
		{
			name: "duplicate pool id",
			mutate: func(gs *types.GenesisState) {
				gs.Pools = append(gs.Pools, genesisPool(1, provider, math.NewInt(0)))
			},
		},
		{
			name: "pool id at the counter",
			mutate: func(gs *types.GenesisState) {
				gs.Pools[0].ID = 2
				gs.Positions[0].PoolID = 2
			},
		},
		{
			name: "position on unknown pool",
			mutate: func(gs *types.GenesisState) {
				gs.Positions[0].PoolID = 7
			},
		},
		{
			name: "positions do not sum to supply",
			mutate: func(gs *types.GenesisState) {
				gs.Positions[0].Shares = math.NewInt(99)
			},
		},
		{
			name: "duplicate position",
			mutate: func(gs *types.GenesisState) {
				gs.Pools[0].TotalShares = math.NewInt(200)
				gs.Positions = append(gs.Positions, gs.Positions[0])
			},
		},
		{
			name: "fee on foreign denom",
			mutate: func(gs *types.GenesisState) {
				gs.PoolFees = []types.PoolFee{{PoolID: 1, Denom: "uother", Amount: math.NewInt(1)}}
			},
		},
		{
			name: "non-positive protocol fee",
			mutate: func(gs *types.GenesisState) {
				gs.ProtocolFees = []types.ProtocolFee{{Denom: "uquote", Amount: math.ZeroInt()}}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gs := base()
			require.NoError(t, gs.Validate())

			tc.mutate(&gs)
			require.ErrorIs(t, gs.Validate(), types.ErrInvalidGenesis)
		})
	}
}

func TestInitGenesisRejectsInvalid(t *testing.T) {
	k, _, ctx := keepertest.PMMKeeper(t)

	gs := types.GenesisState{
		Params:     types.DefaultParams(),
		NextPoolID: 1,
		Pools:      []types.Pool{genesisPool(1, keepertest.TestAddress(0x21), math.NewInt(100))},
	}
	require.ErrorIs(t, k.InitGenesis(ctx, gs), types.ErrInvalidGenesis)
}

func TestUpdateParams(t *testing.T) {
	k, _, ctx := keepertest.PMMKeeper(t)

	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	params.TradeFeeBps = 50

	// Only the authority may update.
	err = k.UpdateParams(ctx, keepertest.TestAddress(0x51), params)
	require.ErrorIs(t, err, types.ErrUnauthorized)

	authority, err := sdk.AccAddressFromBech32(k.GetAuthority())
	require.NoError(t, err)
	require.NoError(t, k.UpdateParams(ctx, authority, params))

	got, err := k.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(50), got.TradeFeeBps)

	// Bounds are enforced on the way in.
	params.TradeFeeBps = types.BasisPointsDivisor
	require.ErrorIs(t, k.UpdateParams(ctx, authority, params), types.ErrInvalidParams)
}
