package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

// nextPoolID returns the next pool id and advances the counter.
func (k Keeper) nextPoolID(ctx sdk.Context) uint64 {
	store := k.regionStore(ctx)
	bz := store.Get(PoolCountKey)

	var poolID uint64 = 1
	if bz != nil {
		poolID = sdk.BigEndianToUint64(bz)
	}
	store.Set(PoolCountKey, sdk.Uint64ToBigEndian(poolID+1))
	return poolID
}

// SetNextPoolID seeds the id counter; used by genesis.
func (k Keeper) SetNextPoolID(ctx sdk.Context, poolID uint64) {
	k.regionStore(ctx).Set(PoolCountKey, sdk.Uint64ToBigEndian(poolID))
}

// GetNextPoolID returns the id the next created pool will receive.
func (k Keeper) GetNextPoolID(ctx sdk.Context) uint64 {
	bz := k.regionStore(ctx).Get(PoolCountKey)
	if bz == nil {
		return 1
	}
	return sdk.BigEndianToUint64(bz)
}

// GetPool retrieves a pool by id. Returns ErrPoolNotFound when absent.
func (k Keeper) GetPool(ctx sdk.Context, poolID uint64) (types.Pool, error) {
	bz := k.regionStore(ctx).Get(PoolKey(poolID))
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, types.ErrInvalidPoolState.Wrapf("unmarshal pool %d: %v", poolID, err)
	}
	return pool, nil
}

// SetPool writes a pool record.
func (k Keeper) SetPool(ctx sdk.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("marshal pool %d: %v", pool.ID, err)
	}
	k.regionStore(ctx).Set(PoolKey(pool.ID), bz)
	return nil
}

// IteratePools walks all pools in id order.
func (k Keeper) IteratePools(ctx sdk.Context, cb func(pool types.Pool) (stop bool)) error {
	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), PoolKeyPrefix)
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var pool types.Pool
		if err := json.Unmarshal(it.Value(), &pool); err != nil {
			return types.ErrInvalidPoolState.Wrapf("unmarshal pool: %v", err)
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// PoolCount returns the number of pool records.
func (k Keeper) PoolCount(ctx sdk.Context) uint64 {
	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), PoolKeyPrefix)
	defer it.Close()

	var count uint64
	for ; it.Valid(); it.Next() {
		count++
	}
	return count
}

// PoolsByPair returns the ids of every pool over the pair, in creation
// order. Pairs are not unique: several pools may quote the same pair with
// different curve parameters.
func (k Keeper) PoolsByPair(ctx sdk.Context, base, quote string) []uint64 {
	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), PairIndexPrefix(base, quote))
	defer it.Close()

	var ids []uint64
	for ; it.Valid(); it.Next() {
		ids = append(ids, sdk.BigEndianToUint64(it.Value()))
	}
	return ids
}

// CreatePool creates a pool with an immutable asset pair and fixed virtual
// reserves. The creator needs the pool-creator role. Initial reserves are
// either both zero (an unseeded pool awaiting its first provider) or both
// positive, in which case the creator receives the founder shares
// sqrt(base·quote).
func (k Keeper) CreatePool(
	ctx sdk.Context,
	creator sdk.AccAddress,
	baseDenom, quoteDenom string,
	baseReserve, quoteReserve, virtualBase, virtualQuote math.Int,
	coefficient, oraclePrice math.LegacyDec,
) (uint64, error) {
	if creator.Empty() {
		return 0, types.ErrInvalidPoolState.Wrap("empty creator")
	}
	if k.security.IsPaused(ctx) {
		return 0, types.ErrPaused
	}
	if !k.access.IsAuthorized(ctx, types.RolePoolCreator, creator) {
		return 0, types.ErrUnauthorized.Wrapf("%s needs role %s", creator, types.RolePoolCreator)
	}

	pool := types.Pool{
		BaseDenom:           baseDenom,
		QuoteDenom:          quoteDenom,
		BaseReserve:         baseReserve,
		QuoteReserve:        quoteReserve,
		VirtualBaseReserve:  virtualBase,
		VirtualQuoteReserve: virtualQuote,
		K:                   coefficient,
		OraclePrice:         oraclePrice,
		TotalShares:         math.ZeroInt(),
		Active:              true,
		Creator:             creator.String(),
	}
	if err := pool.Validate(); err != nil {
		return 0, err
	}
	if baseReserve.IsZero() != quoteReserve.IsZero() {
		return 0, types.ErrInvalidPoolState.Wrap("initial reserves must be both zero or both positive")
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	if k.PoolCount(ctx) >= params.MaxPools {
		return 0, types.ErrTooManyPools.Wrapf("cap %d", params.MaxPools)
	}

	var poolID uint64
	err = guard.WithLatch(k.hostStore(ctx), func() error {
		poolID = k.nextPoolID(ctx)
		pool.ID = poolID

		if baseReserve.IsPositive() {
			founderShares, err := LPShares(baseReserve, quoteReserve, math.ZeroInt(), math.ZeroInt(), math.ZeroInt())
			if err != nil {
				return err
			}
			if founderShares.IsZero() {
				return types.ErrInsufficientLiquidity.Wrap("initial deposit too small for any shares")
			}
			pool.TotalShares = founderShares
			if err := k.addShareBalance(ctx, poolID, creator, founderShares); err != nil {
				return err
			}
		}

		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
		k.regionStore(ctx).Set(PairIndexKey(baseDenom, quoteDenom, poolID), sdk.Uint64ToBigEndian(poolID))
		return nil
	})
	if err != nil {
		return 0, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolCreated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyCreator, creator.String()),
			sdk.NewAttribute(types.AttributeKeyBaseDenom, baseDenom),
			sdk.NewAttribute(types.AttributeKeyQuoteDenom, quoteDenom),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseReserve.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteReserve.String()),
			sdk.NewAttribute(types.AttributeKeyShares, pool.TotalShares.String()),
		),
	)
	k.metrics.PoolsCreated.Inc()
	k.metrics.ActivePools.Inc()
	k.Logger(ctx).Info("pool created",
		"pool_id", poolID,
		"pair", baseDenom+"/"+quoteDenom,
		"creator", creator.String(),
	)
	return poolID, nil
}

// DeactivatePool permanently deactivates a pool. Only the engine authority
// or a security-council member may deactivate, and a pool never reactivates:
// the record stays readable but rejects every mutating operation.
func (k Keeper) DeactivatePool(ctx sdk.Context, caller sdk.AccAddress, poolID uint64) error {
	if caller.String() != k.authority && !k.access.IsAuthorized(ctx, types.RoleSecurityCouncil, caller) {
		return types.ErrUnauthorized.Wrapf("%s needs role %s", caller, types.RoleSecurityCouncil)
	}

	err := guard.WithLatch(k.hostStore(ctx), func() error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if !pool.Active {
			return types.ErrPoolInactive.Wrapf("pool %d", poolID)
		}

		pool.Active = false
		return k.SetPool(ctx, pool)
	})
	if err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolDeactivated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyUpdatedBy, caller.String()),
		),
	)
	k.metrics.ActivePools.Dec()
	k.Logger(ctx).Info("pool deactivated", "pool_id", poolID, "caller", caller.String())
	return nil
}

// SyncOraclePrice refreshes a pool's oracle anchor from the price feed.
// This is the only path that mutates OraclePrice; reserves are untouched.
// Fails when the feed has no fresh price for the pair.
func (k Keeper) SyncOraclePrice(ctx sdk.Context, poolID uint64) error {
	var price math.LegacyDec
	err := guard.WithLatch(k.hostStore(ctx), func() error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if !pool.Active {
			return types.ErrPoolInactive.Wrapf("pool %d", poolID)
		}

		var ok bool
		price, ok = k.oracle.GetReferencePrice(ctx, pool.BaseDenom, pool.QuoteDenom)
		if !ok {
			return types.ErrZeroOraclePrice.Wrapf("no fresh reference price for %s/%s", pool.BaseDenom, pool.QuoteDenom)
		}
		if !price.IsPositive() {
			return types.ErrZeroOraclePrice
		}

		pool.OraclePrice = price
		return k.SetPool(ctx, pool)
	})
	if err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOracleSynced,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyOraclePrice, price.String()),
		),
	)
	return nil
}

// GetPrice returns the pool's instantaneous price. Deactivated pools stay
// readable.
func (k Keeper) GetPrice(ctx sdk.Context, poolID uint64) (math.LegacyDec, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return MidPrice(pool.OraclePrice, pool.K, pool.QuoteReserve, pool.VirtualQuoteReserve)
}
