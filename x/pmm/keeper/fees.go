package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

// GetPoolFees returns a pool's accrued fee balance in denom.
func (k Keeper) GetPoolFees(ctx sdk.Context, poolID uint64, denom string) math.Int {
	return k.readAmount(ctx, PoolFeeKey(poolID, denom))
}

// GetProtocolFees returns the protocol treasury balance in denom.
func (k Keeper) GetProtocolFees(ctx sdk.Context, denom string) math.Int {
	return k.readAmount(ctx, ProtocolFeeKey(denom))
}

func (k Keeper) readAmount(ctx sdk.Context, key []byte) math.Int {
	bz := k.regionStore(ctx).Get(key)
	if bz == nil {
		return math.ZeroInt()
	}
	var amount math.Int
	if err := amount.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return amount
}

// writeAmount stores an amount, deleting the record at zero.
func (k Keeper) writeAmount(ctx sdk.Context, key []byte, amount math.Int) error {
	store := k.regionStore(ctx)
	if amount.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amount.Marshal()
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("marshal amount: %v", err)
	}
	store.Set(key, bz)
	return nil
}

// accrueSwapFees credits the split trading fee of one swap: the pool-local
// slice to the pool's fee balance, the protocol slice to the treasury.
func (k Keeper) accrueSwapFees(ctx sdk.Context, poolID uint64, denom string, poolFee, protocolFee math.Int) error {
	if poolFee.IsPositive() {
		total, err := SafeAdd(k.GetPoolFees(ctx, poolID, denom), poolFee)
		if err != nil {
			return err
		}
		if err := k.writeAmount(ctx, PoolFeeKey(poolID, denom), total); err != nil {
			return err
		}
	}
	if protocolFee.IsPositive() {
		total, err := SafeAdd(k.GetProtocolFees(ctx, denom), protocolFee)
		if err != nil {
			return err
		}
		if err := k.writeAmount(ctx, ProtocolFeeKey(denom), total); err != nil {
			return err
		}
	}

	poolLabel := fmt.Sprintf("%d", poolID)
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFeesCollected,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeyDenomOut, denom),
			sdk.NewAttribute(types.AttributeKeyFee, poolFee.String()),
			sdk.NewAttribute(types.AttributeKeyProtocolFee, protocolFee.String()),
		),
	)
	k.metrics.FeesCollected.WithLabelValues(poolLabel, denom, "pool").Add(floatAmount(poolFee))
	k.metrics.FeesCollected.WithLabelValues(poolLabel, denom, "protocol").Add(floatAmount(protocolFee))
	return nil
}

// ClaimPoolFees pays provider its pro-rata slice of a pool's accrued fees
// across every fee denomination, proportional to its share balance. The
// whole claim runs on a branched store and commits only when it succeeds
// end to end. Fails when the provider holds no shares or nothing is
// claimable.
func (k Keeper) ClaimPoolFees(ctx sdk.Context, provider sdk.AccAddress, poolID uint64) (claimed map[string]math.Int, err error) {
	if provider.Empty() {
		return nil, types.ErrInvalidPoolState.Wrap("empty provider")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if k.security.IsPaused(ctx) {
		return nil, types.ErrPaused
	}

	balance := k.GetShareBalance(ctx, poolID, provider)
	if !balance.IsPositive() {
		return nil, types.ErrInsufficientShares.Wrapf("%s holds no shares of pool %d", provider, poolID)
	}

	cacheCtx, write := ctx.CacheContext()
	claimed = make(map[string]math.Int)

	err = guard.WithLatch(k.hostStore(cacheCtx), func() error {
		it := storetypes.KVStorePrefixIterator(k.regionStore(cacheCtx), PoolFeePrefix(poolID))
		defer it.Close()

		type feeEntry struct {
			denom   string
			accrued math.Int
		}
		var entries []feeEntry
		for ; it.Valid(); it.Next() {
			denom := string(it.Key()[len(PoolFeePrefix(poolID)):])
			var accrued math.Int
			if err := accrued.Unmarshal(it.Value()); err != nil {
				return types.ErrInvalidPoolState.Wrapf("fee balance for %s: %v", denom, err)
			}
			entries = append(entries, feeEntry{denom, accrued})
		}

		for _, entry := range entries {
			share, err := SafeMulDiv(entry.accrued, balance, pool.TotalShares)
			if err != nil {
				return err
			}
			if share.IsZero() {
				continue
			}
			if err := k.writeAmount(cacheCtx, PoolFeeKey(poolID, entry.denom), entry.accrued.Sub(share)); err != nil {
				return err
			}
			claimed[entry.denom] = share
		}

		if len(claimed) == 0 {
			return types.ErrInsufficientFees.Wrapf("pool %d has nothing claimable for %s", poolID, provider)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	write()

	for denom, amount := range claimed {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePoolFeesClaimed,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyDenomOut, denom),
				sdk.NewAttribute(types.AttributeKeyFee, amount.String()),
			),
		)
	}
	k.Logger(ctx).Info("pool fees claimed",
		"pool_id", poolID,
		"provider", provider.String(),
		"denoms", len(claimed),
	)
	return claimed, nil
}

// WithdrawProtocolFees pays the full protocol treasury balance in denom to
// the recipient. The caller needs the fee-manager role. Fails when nothing
// has accrued.
func (k Keeper) WithdrawProtocolFees(ctx sdk.Context, caller sdk.AccAddress, denom string, to sdk.AccAddress) (math.Int, error) {
	if to.Empty() {
		return math.Int{}, types.ErrInvalidPoolState.Wrap("empty recipient")
	}
	if !k.access.IsAuthorized(ctx, types.RoleFeeManager, caller) {
		return math.Int{}, types.ErrUnauthorized.Wrapf("%s needs role %s", caller, types.RoleFeeManager)
	}

	accrued := k.GetProtocolFees(ctx, denom)
	if !accrued.IsPositive() {
		return math.Int{}, types.ErrInsufficientFees.Wrapf("no protocol fees in %s", denom)
	}

	err := guard.WithLatch(k.hostStore(ctx), func() error {
		return k.writeAmount(ctx, ProtocolFeeKey(denom), math.ZeroInt())
	})
	if err != nil {
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProtocolFees,
			sdk.NewAttribute(types.AttributeKeyDenomOut, denom),
			sdk.NewAttribute(types.AttributeKeyFee, accrued.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, to.String()),
		),
	)
	k.Logger(ctx).Info("protocol fees withdrawn",
		"denom", denom,
		"amount", accrued.String(),
		"recipient", to.String(),
	)
	return accrued, nil
}
