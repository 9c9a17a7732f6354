package keeper

import (
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
)

// GetParams returns the engine parameters, defaults when none are stored.
func (k Keeper) GetParams(ctx sdk.Context) (types.Params, error) {
	bz := k.regionStore(ctx).Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, types.ErrInvalidParams.Wrapf("unmarshal: %v", err)
	}
	return params, nil
}

// SetParams validates and stores the engine parameters.
func (k Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return types.ErrInvalidParams.Wrapf("marshal: %v", err)
	}
	k.regionStore(ctx).Set(ParamsKey, bz)
	return nil
}

// UpdateParams replaces the engine parameters. Only the authority may
// update.
func (k Keeper) UpdateParams(ctx sdk.Context, caller sdk.AccAddress, params types.Params) error {
	if caller.String() != k.authority {
		return types.ErrUnauthorized.Wrapf("expected authority %s, got %s", k.authority, caller)
	}
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyUpdatedBy, caller.String()),
		),
	)
	k.Logger(ctx).Info("engine parameters updated", "authority", caller.String())
	return nil
}
