package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// RegisterInvariants registers all registry invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "arena-index", ArenaIndexInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-arena", ModuleArenaInvariant(k))
	ir.RegisterRoute(types.ModuleName, "route-count", RouteCountInvariant(k))
}

// AllInvariants runs all invariants of the registry module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := ArenaIndexInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = ModuleArenaInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return RouteCountInvariant(k)(ctx)
	}
}

// ArenaIndexInvariant checks that every owned-id arena slot and its route
// entry agree: arena[route.Position] == id and the slot's route points back
// at the owning module.
func ArenaIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		for _, module := range k.ListModules(ctx) {
			idCount := k.moduleIDCount(ctx, module)
			for pos := uint16(0); pos < idCount; pos++ {
				id, ok := k.moduleIDAt(ctx, module, pos)
				if !ok {
					count++
					msg += fmt.Sprintf("module %s: arena slot %d empty\n", module, pos)
					continue
				}
				route, ok := k.getRoute(ctx, id)
				if !ok {
					count++
					msg += fmt.Sprintf("module %s: arena slot %d holds unrouted %s\n", module, pos, id)
					continue
				}
				if !route.Module.Equals(module) {
					count++
					msg += fmt.Sprintf("identifier %s: arena owner %s, route owner %s\n", id, module, route.Module)
				}
				if route.Position != pos {
					count++
					msg += fmt.Sprintf("identifier %s: arena position %d, route position %d\n", id, pos, route.Position)
				}
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "arena-index",
			fmt.Sprintf("found %d arena/index mismatches\n%s", count, msg),
		), broken
	}
}

// ModuleArenaInvariant checks the global module arena: position records
// match slots, and a module sits in the arena exactly when it owns at least
// one identifier.
func ModuleArenaInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		moduleCount := k.moduleCount(ctx)
		for pos := uint16(0); pos < moduleCount; pos++ {
			module, ok := k.moduleAt(ctx, pos)
			if !ok {
				count++
				msg += fmt.Sprintf("global arena slot %d empty\n", pos)
				continue
			}
			recorded := bytesToUint16(k.regionStore(ctx).Get(ModulePositionKey(module)))
			if recorded != pos {
				count++
				msg += fmt.Sprintf("module %s: recorded position %d, arena slot %d\n", module, recorded, pos)
			}
			if k.moduleIDCount(ctx, module) == 0 {
				count++
				msg += fmt.Sprintf("module %s in global arena with zero owned identifiers\n", module)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "module-arena",
			fmt.Sprintf("found %d global arena violations\n%s", count, msg),
		), broken
	}
}

// RouteCountInvariant checks that the route table size equals the sum of
// all owned-id arena sizes.
func RouteCountInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		arenaTotal := 0
		for _, module := range k.ListModules(ctx) {
			arenaTotal += int(k.moduleIDCount(ctx, module))
		}
		routes := k.RouteCount(ctx)

		broken := arenaTotal != routes
		return sdk.FormatInvariant(
			types.ModuleName, "route-count",
			fmt.Sprintf("route table holds %d entries, arenas hold %d\n", routes, arenaTotal),
		), broken
	}
}
