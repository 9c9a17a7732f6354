package keeper

import (
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
)

// InitGenesis seeds the engine: parameters, the pool id counter, pool
// records with their pair index entries, liquidity positions, and accrued
// fee balances.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	if gs.NextPoolID > 0 {
		k.SetNextPoolID(ctx, gs.NextPoolID)
	}

	for _, pool := range gs.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
		k.regionStore(ctx).Set(
			PairIndexKey(pool.BaseDenom, pool.QuoteDenom, pool.ID),
			sdk.Uint64ToBigEndian(pool.ID),
		)
	}

	for _, pos := range gs.Positions {
		provider, err := sdk.AccAddressFromBech32(pos.Provider)
		if err != nil {
			return types.ErrInvalidGenesis.Wrapf("position provider: %v", err)
		}
		if err := k.setShareBalance(ctx, pos.PoolID, provider, pos.Shares); err != nil {
			return err
		}
	}

	for _, fee := range gs.PoolFees {
		if err := k.writeAmount(ctx, PoolFeeKey(fee.PoolID, fee.Denom), fee.Amount); err != nil {
			return err
		}
	}
	for _, fee := range gs.ProtocolFees {
		if err := k.writeAmount(ctx, ProtocolFeeKey(fee.Denom), fee.Amount); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis captures the full engine state.
func (k Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	gs := &types.GenesisState{
		Params:     params,
		NextPoolID: k.GetNextPoolID(ctx),
	}

	err = k.IteratePools(ctx, func(pool types.Pool) bool {
		gs.Pools = append(gs.Pools, pool)

		k.IterateShareBalances(ctx, pool.ID, func(provider sdk.AccAddress, shares math.Int) bool {
			gs.Positions = append(gs.Positions, types.Position{
				PoolID:   pool.ID,
				Provider: provider.String(),
				Shares:   shares,
			})
			return false
		})

		for _, denom := range []string{pool.BaseDenom, pool.QuoteDenom} {
			if accrued := k.GetPoolFees(ctx, pool.ID, denom); accrued.IsPositive() {
				gs.PoolFees = append(gs.PoolFees, types.PoolFee{
					PoolID: pool.ID,
					Denom:  denom,
					Amount: accrued,
				})
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), ProtocolFeeKeyPrefix)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		denom := string(it.Key()[len(ProtocolFeeKeyPrefix):])
		var amount math.Int
		if err := amount.Unmarshal(it.Value()); err != nil {
			return nil, types.ErrInvalidPoolState.Wrapf("protocol fee balance for %s: %v", denom, err)
		}
		gs.ProtocolFees = append(gs.ProtocolFees, types.ProtocolFee{Denom: denom, Amount: amount})
	}
	return gs, nil
}
