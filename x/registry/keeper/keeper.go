package keeper

import (
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// Keeper maintains the dispatch registry: the routing table from function
// identifiers to modules, the per-module and global position arenas behind
// O(1) removal, and the registry ownership record.
type Keeper struct {
	storeKey storetypes.StoreKey
	code     types.CodeResolver
	self     sdk.AccAddress
}

// NewKeeper creates a registry Keeper. storeKey is the host's shared store;
// the keeper works inside the registry region of it. self is the registry's
// own module address, whose routes are permanent and exempt from code
// checks.
func NewKeeper(storeKey storetypes.StoreKey, code types.CodeResolver, self sdk.AccAddress) Keeper {
	if code == nil {
		panic("registry keeper requires a code resolver")
	}
	if self.Empty() {
		panic("registry keeper requires a self address")
	}
	return Keeper{
		storeKey: storeKey,
		code:     code,
		self:     self,
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// SelfAddress returns the registry's own module address.
func (k Keeper) SelfAddress() sdk.AccAddress {
	return k.self
}

// StoreKey exposes the host store key for collaborators that share it.
func (k Keeper) StoreKey() storetypes.StoreKey {
	return k.storeKey
}

// regionStore opens the registry's region of the host store.
func (k Keeper) regionStore(ctx sdk.Context) storetypes.KVStore {
	return types.Region.Open(ctx.KVStore(k.storeKey))
}
