package keeper

import (
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// Introspection surface. All of these are read-only walks over the position
// arenas, so results come back in arena order: stable until a swap-and-pop
// reorders a tail entry.

// ListModules returns every module that currently owns at least one route.
func (k Keeper) ListModules(ctx sdk.Context) []sdk.AccAddress {
	count := k.moduleCount(ctx)
	modules := make([]sdk.AccAddress, 0, count)
	for pos := uint16(0); pos < count; pos++ {
		if addr, ok := k.moduleAt(ctx, pos); ok {
			modules = append(modules, addr)
		}
	}
	return modules
}

// ListFunctionIDs returns the identifiers owned by module, empty when the
// module owns none.
func (k Keeper) ListFunctionIDs(ctx sdk.Context, module sdk.AccAddress) []types.FunctionID {
	count := k.moduleIDCount(ctx, module)
	ids := make([]types.FunctionID, 0, count)
	for pos := uint16(0); pos < count; pos++ {
		if id, ok := k.moduleIDAt(ctx, module, pos); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Facets returns the whole routing table grouped by module.
func (k Keeper) Facets(ctx sdk.Context) []types.ModuleRoutes {
	modules := k.ListModules(ctx)
	facets := make([]types.ModuleRoutes, 0, len(modules))
	for _, module := range modules {
		facets = append(facets, types.ModuleRoutes{
			Module:      module,
			FunctionIDs: k.ListFunctionIDs(ctx, module),
		})
	}
	return facets
}

// RouteCount returns the number of routed identifiers. Linear over the
// route prefix; used by invariant checks, not the dispatch path.
func (k Keeper) RouteCount(ctx sdk.Context) int {
	store := k.regionStore(ctx)
	it := storetypes.KVStorePrefixIterator(store, RouteKeyPrefix)
	defer it.Close()

	count := 0
	for ; it.Valid(); it.Next() {
		count++
	}
	return count
}
