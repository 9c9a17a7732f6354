package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// InitGenesis initializes ownership and installs the permanent self routes.
// The self module is exempt from the code check, and once installed these
// routes can never be replaced or removed.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	owner, err := sdk.AccAddressFromBech32(gs.Owner)
	if err != nil {
		return types.ErrInvalidGenesis.Wrapf("owner: %s", err)
	}
	if err := k.InitializeOwner(ctx, owner); err != nil {
		return err
	}
	if len(gs.SelfFunctionIDs) > 0 {
		if err := k.AddRoutes(ctx, k.self, gs.SelfFunctionIDs); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns the current owner and self routes.
func (k Keeper) ExportGenesis(ctx sdk.Context) types.GenesisState {
	gs := types.GenesisState{
		SelfFunctionIDs: k.ListFunctionIDs(ctx, k.self),
	}
	if owner, ok := k.Owner(ctx); ok {
		gs.Owner = owner.String()
	}
	return gs
}
