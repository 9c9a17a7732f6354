package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/security/types"
)

// SetBreaker configures (or reconfigures) a pool's circuit breaker. Only
// the authority or the security council may configure. referencePrice
// anchors the deviation band until the first accepted trade moves it.
func (k Keeper) SetBreaker(ctx sdk.Context, caller sdk.AccAddress, poolID uint64, config types.BreakerConfig, referencePrice math.LegacyDec) error {
	if !k.mayOperate(ctx, caller, RoleSecurityCouncil) {
		return types.ErrUnauthorized.Wrapf("%s needs role %s", caller, RoleSecurityCouncil)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if referencePrice.IsNil() || !referencePrice.IsPositive() {
		return types.ErrInvalidBreaker.Wrap("reference price must be positive")
	}

	state := types.BreakerState{Config: config, ReferencePrice: referencePrice}
	if err := k.setBreakerState(ctx, poolID, state); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBreakerSet,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyActor, caller.String()),
			sdk.NewAttribute(types.AttributeKeyPrice, referencePrice.String()),
		),
	)
	k.Logger(ctx).Info("circuit breaker configured",
		"pool_id", poolID,
		"max_deviation_bps", config.MaxDeviationBps,
		"cooldown_seconds", config.CooldownSeconds,
	)
	return nil
}

// CheckCircuitBreaker reports whether a trade at price may proceed on the
// pool. Pools without a configured breaker always pass. A tripped breaker
// rejects until its cooldown elapses, then re-arms on the next check. A
// passing check moves the reference price to the observed one; a price
// outside the deviation band trips the breaker and rejects.
//
// This is a consuming hook for the pool engine: state moves as a side
// effect of the answer, so the engine must ask exactly once per trade,
// before mutating its own state.
func (k Keeper) CheckCircuitBreaker(ctx sdk.Context, poolID uint64, price math.LegacyDec) bool {
	state, ok := k.breakerState(ctx, poolID)
	if !ok {
		return true
	}
	if price.IsNil() || !price.IsPositive() {
		return false
	}

	now := ctx.BlockTime().Unix()
	if state.Tripped {
		if now-state.TrippedAt < int64(state.Config.CooldownSeconds) {
			return false
		}
		// Cooldown over: re-arm around the observed price.
		state.Tripped = false
		state.TrippedAt = 0
		state.ReferencePrice = price
		if err := k.setBreakerState(ctx, poolID, state); err != nil {
			return false
		}
		return true
	}

	deviation := price.Sub(state.ReferencePrice).Abs().Quo(state.ReferencePrice)
	band := math.LegacyNewDec(int64(state.Config.MaxDeviationBps)).QuoInt64(10000)
	if deviation.GT(band) {
		state.Tripped = true
		state.TrippedAt = now
		if err := k.setBreakerState(ctx, poolID, state); err != nil {
			return false
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeBreakerTripped,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyPrice, price.String()),
			),
		)
		k.Logger(ctx).Error("circuit breaker tripped",
			"pool_id", poolID,
			"price", price.String(),
			"reference", state.ReferencePrice.String(),
		)
		return false
	}

	state.ReferencePrice = price
	if err := k.setBreakerState(ctx, poolID, state); err != nil {
		return false
	}
	return true
}

// ResetBreaker clears a tripped breaker before its cooldown elapses and
// re-anchors the band at referencePrice. Authority or security council
// only.
func (k Keeper) ResetBreaker(ctx sdk.Context, caller sdk.AccAddress, poolID uint64, referencePrice math.LegacyDec) error {
	if !k.mayOperate(ctx, caller, RoleSecurityCouncil) {
		return types.ErrUnauthorized.Wrapf("%s needs role %s", caller, RoleSecurityCouncil)
	}

	state, ok := k.breakerState(ctx, poolID)
	if !ok {
		return types.ErrBreakerNotFound.Wrapf("pool %d", poolID)
	}
	if !state.Tripped {
		return types.ErrBreakerNotOpen.Wrapf("pool %d", poolID)
	}
	if referencePrice.IsNil() || !referencePrice.IsPositive() {
		return types.ErrInvalidBreaker.Wrap("reference price must be positive")
	}

	state.Tripped = false
	state.TrippedAt = 0
	state.ReferencePrice = referencePrice
	if err := k.setBreakerState(ctx, poolID, state); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBreakerReset,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyActor, caller.String()),
			sdk.NewAttribute(types.AttributeKeyPrice, referencePrice.String()),
		),
	)
	k.Logger(ctx).Info("circuit breaker reset", "pool_id", poolID, "actor", caller.String())
	return nil
}

// GetBreaker returns a pool's breaker record.
func (k Keeper) GetBreaker(ctx sdk.Context, poolID uint64) (types.BreakerState, bool) {
	return k.breakerState(ctx, poolID)
}

func (k Keeper) breakerState(ctx sdk.Context, poolID uint64) (types.BreakerState, bool) {
	bz := k.regionStore(ctx).Get(BreakerKey(poolID))
	if bz == nil {
		return types.BreakerState{}, false
	}
	var state types.BreakerState
	if err := json.Unmarshal(bz, &state); err != nil {
		return types.BreakerState{}, false
	}
	return state, true
}

func (k Keeper) setBreakerState(ctx sdk.Context, poolID uint64, state types.BreakerState) error {
	bz, err := json.Marshal(state)
	if err != nil {
		return types.ErrInvalidBreaker.Wrapf("marshal breaker state: %v", err)
	}
	k.regionStore(ctx).Set(BreakerKey(poolID), bz)
	return nil
}
