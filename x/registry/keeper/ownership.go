package keeper

import (
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// InitializeOwner assigns the first registry owner. The initialized flag
// flips true here and never resets, so a second call fails regardless of
// the caller.
func (k Keeper) InitializeOwner(ctx sdk.Context, owner sdk.AccAddress) error {
	if owner.Empty() {
		return types.ErrZeroAddress.Wrap("owner")
	}
	if rec, ok := k.ownerRecord(ctx); ok && rec.Initialized {
		return types.ErrAlreadyInitialized.Wrapf("owner %s", rec.Owner)
	}

	k.setOwnerRecord(ctx, types.OwnerRecord{Owner: owner.String(), Initialized: true})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRegistryInitialized,
			sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
		),
	)
	k.Logger(ctx).Info("registry ownership initialized", "owner", owner.String())
	return nil
}

// Owner returns the current registry owner, or false before initialization.
func (k Keeper) Owner(ctx sdk.Context) (sdk.AccAddress, bool) {
	rec, ok := k.ownerRecord(ctx)
	if !ok || !rec.Initialized {
		return nil, false
	}
	owner, err := sdk.AccAddressFromBech32(rec.Owner)
	if err != nil {
		return nil, false
	}
	return owner, true
}

// TransferOwnership hands the registry to newOwner. Only the current owner
// may transfer, and the new owner must be a real address.
func (k Keeper) TransferOwnership(ctx sdk.Context, caller, newOwner sdk.AccAddress) error {
	if err := k.assertOwner(ctx, caller); err != nil {
		return err
	}
	if newOwner.Empty() {
		return types.ErrZeroAddress.Wrap("new owner")
	}

	k.setOwnerRecord(ctx, types.OwnerRecord{Owner: newOwner.String(), Initialized: true})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOwnershipTransferred,
			sdk.NewAttribute(types.AttributeKeyPreviousOwner, caller.String()),
			sdk.NewAttribute(types.AttributeKeyNewOwner, newOwner.String()),
		),
	)
	k.Logger(ctx).Info("registry ownership transferred",
		"previous_owner", caller.String(),
		"new_owner", newOwner.String(),
	)
	return nil
}

func (k Keeper) assertOwner(ctx sdk.Context, caller sdk.AccAddress) error {
	owner, ok := k.Owner(ctx)
	if !ok {
		return types.ErrNotInitialized
	}
	if !owner.Equals(caller) {
		return types.ErrUnauthorized.Wrapf("caller %s, owner %s", caller, owner)
	}
	return nil
}

func (k Keeper) ownerRecord(ctx sdk.Context) (types.OwnerRecord, bool) {
	bz := k.regionStore(ctx).Get(OwnerKey)
	if bz == nil {
		return types.OwnerRecord{}, false
	}
	var rec types.OwnerRecord
	if err := json.Unmarshal(bz, &rec); err != nil {
		return types.OwnerRecord{}, false
	}
	return rec, true
}

func (k Keeper) setOwnerRecord(ctx sdk.Context, rec types.OwnerRecord) {
	bz, err := json.Marshal(rec)
	if err != nil {
		panic(err)
	}
	k.regionStore(ctx).Set(OwnerKey, bz)
}
