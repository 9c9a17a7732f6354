package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

// GetShareBalance returns provider's share balance in a pool, zero when the
// provider holds no position.
func (k Keeper) GetShareBalance(ctx sdk.Context, poolID uint64, provider sdk.AccAddress) math.Int {
	bz := k.regionStore(ctx).Get(ShareKey(poolID, provider))
	if bz == nil {
		return math.ZeroInt()
	}
	var balance math.Int
	if err := balance.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return balance
}

// setShareBalance writes a share balance, deleting the record at zero so an
// exited provider leaves no residue.
func (k Keeper) setShareBalance(ctx sdk.Context, poolID uint64, provider sdk.AccAddress, balance math.Int) error {
	store := k.regionStore(ctx)
	if balance.IsZero() {
		store.Delete(ShareKey(poolID, provider))
		return nil
	}
	bz, err := balance.Marshal()
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("marshal share balance: %v", err)
	}
	store.Set(ShareKey(poolID, provider), bz)
	return nil
}

func (k Keeper) addShareBalance(ctx sdk.Context, poolID uint64, provider sdk.AccAddress, shares math.Int) error {
	balance, err := SafeAdd(k.GetShareBalance(ctx, poolID, provider), shares)
	if err != nil {
		return err
	}
	return k.setShareBalance(ctx, poolID, provider, balance)
}

// IterateShareBalances walks every position of a pool.
func (k Keeper) IterateShareBalances(ctx sdk.Context, poolID uint64, cb func(provider sdk.AccAddress, shares math.Int) (stop bool)) {
	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), SharePrefix(poolID))
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key := it.Key()
		// Key layout: prefix ++ pool id ++ length-prefixed provider.
		addrOffset := len(ShareKeyPrefix) + 8 + 1
		if len(key) <= addrOffset {
			continue
		}
		provider := sdk.AccAddress(key[addrOffset:])

		var shares math.Int
		if err := shares.Unmarshal(it.Value()); err != nil {
			continue
		}
		if cb(provider, shares) {
			break
		}
	}
}

// AddLiquidity deposits base and quote into a pool and mints shares per the
// proportional rule: the geometric mean for the first provider, the
// proportional minimum afterward. Reserves and total supply grow by the
// full deposit.
func (k Keeper) AddLiquidity(ctx sdk.Context, provider sdk.AccAddress, poolID uint64, baseAmount, quoteAmount math.Int) (math.Int, error) {
	if provider.Empty() {
		return math.Int{}, types.ErrInvalidPoolState.Wrap("empty provider")
	}
	if !baseAmount.IsPositive() || !quoteAmount.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("liquidity deposit")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.Active {
		return math.Int{}, types.ErrPoolInactive.Wrapf("pool %d", poolID)
	}
	if k.security.IsPaused(ctx) {
		return math.Int{}, types.ErrPaused
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if !k.access.CanAccess(ctx, provider, params.LiquidityAccessMode) {
		return math.Int{}, types.ErrAccessDenied.Wrapf("%s lacks mode %d", provider, params.LiquidityAccessMode)
	}

	var shares math.Int
	err = guard.WithLatch(k.hostStore(ctx), func() error {
		shares, err = LPShares(baseAmount, quoteAmount, pool.BaseReserve, pool.QuoteReserve, pool.TotalShares)
		if err != nil {
			return err
		}
		if shares.IsZero() {
			return types.ErrInsufficientLiquidity.Wrap("deposit too small for any shares")
		}

		if pool.BaseReserve, err = SafeAdd(pool.BaseReserve, baseAmount); err != nil {
			return err
		}
		if pool.QuoteReserve, err = SafeAdd(pool.QuoteReserve, quoteAmount); err != nil {
			return err
		}
		if pool.TotalShares, err = SafeAdd(pool.TotalShares, shares); err != nil {
			return err
		}

		if err := k.addShareBalance(ctx, poolID, provider, shares); err != nil {
			return err
		}
		return k.SetPool(ctx, pool)
	})
	if err != nil {
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityAdded,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseAmount.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteAmount.String()),
			sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
		),
	)
	poolLabel := fmt.Sprintf("%d", poolID)
	k.metrics.LiquidityAdded.WithLabelValues(poolLabel, pool.BaseDenom).Add(floatAmount(baseAmount))
	k.metrics.LiquidityAdded.WithLabelValues(poolLabel, pool.QuoteDenom).Add(floatAmount(quoteAmount))
	k.Logger(ctx).Info("liquidity added",
		"pool_id", poolID,
		"provider", provider.String(),
		"shares", shares.String(),
	)
	return shares, nil
}

// RemoveLiquidity burns shares and withdraws the proportional slice of both
// reserves: amount = shares·reserve/totalSupply on each side. Fails when
// the provider's balance is short or a computed amount rounds to zero.
func (k Keeper) RemoveLiquidity(ctx sdk.Context, provider sdk.AccAddress, poolID uint64, shares math.Int) (baseOut, quoteOut math.Int, err error) {
	if provider.Empty() {
		return math.Int{}, math.Int{}, types.ErrInvalidPoolState.Wrap("empty provider")
	}
	if !shares.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrZeroAmount.Wrap("shares")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !pool.Active {
		return math.Int{}, math.Int{}, types.ErrPoolInactive.Wrapf("pool %d", poolID)
	}
	if k.security.IsPaused(ctx) {
		return math.Int{}, math.Int{}, types.ErrPaused
	}

	balance := k.GetShareBalance(ctx, poolID, provider)
	if balance.LT(shares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientShares.Wrapf("balance %s, requested %s", balance, shares)
	}

	err = guard.WithLatch(k.hostStore(ctx), func() error {
		baseOut, err = SafeMulDiv(shares, pool.BaseReserve, pool.TotalShares)
		if err != nil {
			return err
		}
		quoteOut, err = SafeMulDiv(shares, pool.QuoteReserve, pool.TotalShares)
		if err != nil {
			return err
		}
		if baseOut.IsZero() || quoteOut.IsZero() {
			return types.ErrInsufficientLiquidity.Wrap("withdrawal rounds to zero")
		}

		if pool.BaseReserve, err = SafeSub(pool.BaseReserve, baseOut); err != nil {
			return err
		}
		if pool.QuoteReserve, err = SafeSub(pool.QuoteReserve, quoteOut); err != nil {
			return err
		}
		if pool.TotalShares, err = SafeSub(pool.TotalShares, shares); err != nil {
			return err
		}

		if err := k.setShareBalance(ctx, poolID, provider, balance.Sub(shares)); err != nil {
			return err
		}
		return k.SetPool(ctx, pool)
	})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityRemove,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseOut.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteOut.String()),
			sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
		),
	)
	poolLabel := fmt.Sprintf("%d", poolID)
	k.metrics.LiquidityRemoved.WithLabelValues(poolLabel, pool.BaseDenom).Add(floatAmount(baseOut))
	k.metrics.LiquidityRemoved.WithLabelValues(poolLabel, pool.QuoteDenom).Add(floatAmount(quoteOut))
	k.Logger(ctx).Info("liquidity removed",
		"pool_id", poolID,
		"provider", provider.String(),
		"shares", shares.String(),
	)
	return baseOut, quoteOut, nil
}

// floatAmount approximates an amount for metrics; precision loss here is
// acceptable because metrics are observational.
func floatAmount(amount math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(amount).Float64()
	return f
}
