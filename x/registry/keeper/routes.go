package keeper

import (
	"math"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/types"
)

// Resolve returns the module that implements id. The second return is false
// when the identifier is not routed. O(1), no side effects.
func (k Keeper) Resolve(ctx sdk.Context, id types.FunctionID) (sdk.AccAddress, bool) {
	route, ok := k.getRoute(ctx, id)
	if !ok {
		return nil, false
	}
	return route.Module, true
}

// AddRoutes routes each identifier to module. It fails on the null module
// address, on an empty identifier batch, and on any identifier that already
// has an owner. A module gaining its first route must hold executable code
// (the registry's own self module is exempt) and is appended to the global
// module list.
func (k Keeper) AddRoutes(ctx sdk.Context, module sdk.AccAddress, ids []types.FunctionID) error {
	if module.Empty() {
		return types.ErrZeroAddress.Wrap("add routes")
	}
	if len(ids) == 0 {
		return types.ErrEmptyFunctionIDs.Wrap("add routes")
	}

	for _, id := range ids {
		if route, ok := k.getRoute(ctx, id); ok {
			return types.ErrRouteExists.Wrapf("%s owned by %s", id, route.Module)
		}
		if err := k.appendRoute(ctx, module, id); err != nil {
			return err
		}
	}

	k.emitRouteEvent(ctx, types.EventTypeRoutesAdded, module, ids)
	return nil
}

// ReplaceRoutes moves each identifier from its current owner to module. It
// rejects unrouted identifiers, no-op replacements where module already owns
// the identifier, and identifiers owned by the permanent self module. The
// re-add side behaves exactly like AddRoutes, including the code check when
// module gains its first route.
func (k Keeper) ReplaceRoutes(ctx sdk.Context, module sdk.AccAddress, ids []types.FunctionID) error {
	if module.Empty() {
		return types.ErrZeroAddress.Wrap("replace routes")
	}
	if len(ids) == 0 {
		return types.ErrEmptyFunctionIDs.Wrap("replace routes")
	}

	for _, id := range ids {
		route, ok := k.getRoute(ctx, id)
		if !ok {
			return types.ErrRouteNotFound.Wrapf("cannot replace %s", id)
		}
		if route.Module.Equals(module) {
			return types.ErrSameModuleReplace.Wrapf("%s already routed to %s", id, module)
		}
		if err := k.deleteRoute(ctx, id); err != nil {
			return err
		}
		if err := k.appendRoute(ctx, module, id); err != nil {
			return err
		}
	}

	k.emitRouteEvent(ctx, types.EventTypeRoutesReplaced, module, ids)
	return nil
}

// RemoveRoutes unroutes each identifier. By convention the module operand
// must be the null address: the owner is read from each identifier's current
// route, never supplied. Unrouted identifiers and routes owned by the
// permanent self module fail the whole batch.
func (k Keeper) RemoveRoutes(ctx sdk.Context, module sdk.AccAddress, ids []types.FunctionID) error {
	if !module.Empty() {
		return types.ErrRemoveTargetNotNull.Wrapf("got %s", module)
	}
	if len(ids) == 0 {
		return types.ErrEmptyFunctionIDs.Wrap("remove routes")
	}

	for _, id := range ids {
		if err := k.deleteRoute(ctx, id); err != nil {
			return err
		}
	}

	k.emitRouteEvent(ctx, types.EventTypeRoutesRemoved, nil, ids)
	return nil
}

// appendRoute registers id at the tail of module's owned-id arena. A module
// gaining its first identifier is registered in the global arena first.
func (k Keeper) appendRoute(ctx sdk.Context, module sdk.AccAddress, id types.FunctionID) error {
	count := k.moduleIDCount(ctx, module)
	if count == 0 {
		if err := k.registerModule(ctx, module); err != nil {
			return err
		}
	}
	if count == math.MaxUint16 {
		return types.ErrRegistryFull.Wrapf("module %s owns %d identifiers", module, count)
	}

	store := k.regionStore(ctx)
	store.Set(ModuleIDAtKey(module, count), id.Bytes())
	k.setModuleIDCount(ctx, module, count+1)
	k.setRoute(ctx, id, types.Route{Module: module, Position: count})
	return nil
}

// deleteRoute removes id via swap-and-pop: the arena's last identifier moves
// into the vacated slot (its recorded position updated), the tail slot is
// popped, and the route entry is cleared. A module losing its last
// identifier leaves the global arena the same way. Position, not insertion
// order, is the preserved contract.
func (k Keeper) deleteRoute(ctx sdk.Context, id types.FunctionID) error {
	route, ok := k.getRoute(ctx, id)
	if !ok {
		return types.ErrRouteNotFound.Wrap(id.String())
	}
	owner := route.Module
	if owner.Equals(k.self) {
		return types.ErrImmutableRoute.Wrap(id.String())
	}

	store := k.regionStore(ctx)
	count := k.moduleIDCount(ctx, owner)
	if count == 0 || route.Position >= count {
		return types.ErrCorruptState.Wrapf("route %s at position %d, arena size %d", id, route.Position, count)
	}
	last := count - 1

	if route.Position != last {
		lastID, ok := k.moduleIDAt(ctx, owner, last)
		if !ok {
			return types.ErrCorruptState.Wrapf("missing arena slot %d of %s", last, owner)
		}
		store.Set(ModuleIDAtKey(owner, route.Position), lastID.Bytes())

		moved, ok := k.getRoute(ctx, lastID)
		if !ok {
			return types.ErrCorruptState.Wrapf("arena slot %d of %s holds unrouted %s", last, owner, lastID)
		}
		moved.Position = route.Position
		k.setRoute(ctx, lastID, moved)
	}

	store.Delete(ModuleIDAtKey(owner, last))
	k.setModuleIDCount(ctx, owner, last)
	store.Delete(RouteKey(id))

	if last == 0 {
		return k.unregisterModule(ctx, owner)
	}
	return nil
}

// registerModule appends module to the global arena. Except for the self
// module, the address must hold executable code before it can own a route.
func (k Keeper) registerModule(ctx sdk.Context, module sdk.AccAddress) error {
	if !module.Equals(k.self) && !k.code.HasCode(module) {
		return types.ErrModuleHasNoCode.Wrap(module.String())
	}

	count := k.moduleCount(ctx)
	if count == math.MaxUint16 {
		return types.ErrRegistryFull.Wrapf("%d modules registered", count)
	}

	store := k.regionStore(ctx)
	store.Set(ModuleAtKey(count), module.Bytes())
	store.Set(ModulePositionKey(module), uint16ToBytes(count))
	k.setModuleCount(ctx, count+1)
	return nil
}

// unregisterModule swap-and-pops module out of the global arena once its
// owned-id arena is empty.
func (k Keeper) unregisterModule(ctx sdk.Context, module sdk.AccAddress) error {
	store := k.regionStore(ctx)

	posBz := store.Get(ModulePositionKey(module))
	if posBz == nil {
		return types.ErrCorruptState.Wrapf("module %s missing from global arena", module)
	}
	pos := bytesToUint16(posBz)

	count := k.moduleCount(ctx)
	if count == 0 || pos >= count {
		return types.ErrCorruptState.Wrapf("module %s at position %d, arena size %d", module, pos, count)
	}
	last := count - 1

	if pos != last {
		lastAddr, ok := k.moduleAt(ctx, last)
		if !ok {
			return types.ErrCorruptState.Wrapf("missing global arena slot %d", last)
		}
		store.Set(ModuleAtKey(pos), lastAddr.Bytes())
		store.Set(ModulePositionKey(lastAddr), uint16ToBytes(pos))
	}

	store.Delete(ModuleAtKey(last))
	store.Delete(ModulePositionKey(module))
	k.setModuleCount(ctx, last)
	return nil
}

func (k Keeper) getRoute(ctx sdk.Context, id types.FunctionID) (types.Route, bool) {
	bz := k.regionStore(ctx).Get(RouteKey(id))
	if bz == nil {
		return types.Route{}, false
	}
	return decodeRoute(bz)
}

func (k Keeper) setRoute(ctx sdk.Context, id types.FunctionID, route types.Route) {
	k.regionStore(ctx).Set(RouteKey(id), encodeRoute(route))
}

func (k Keeper) moduleIDAt(ctx sdk.Context, module sdk.AccAddress, pos uint16) (types.FunctionID, bool) {
	bz := k.regionStore(ctx).Get(ModuleIDAtKey(module, pos))
	if bz == nil {
		return types.FunctionID{}, false
	}
	id, err := types.FunctionIDFromBytes(bz)
	if err != nil {
		return types.FunctionID{}, false
	}
	return id, true
}

func (k Keeper) moduleIDCount(ctx sdk.Context, module sdk.AccAddress) uint16 {
	return bytesToUint16(k.regionStore(ctx).Get(ModuleIDCountKey(module)))
}

// setModuleIDCount writes the owned-id count, deleting the record at zero so
// an absent module leaves no residue in the region.
func (k Keeper) setModuleIDCount(ctx sdk.Context, module sdk.AccAddress, count uint16) {
	store := k.regionStore(ctx)
	if count == 0 {
		store.Delete(ModuleIDCountKey(module))
		return
	}
	store.Set(ModuleIDCountKey(module), uint16ToBytes(count))
}

func (k Keeper) moduleAt(ctx sdk.Context, pos uint16) (sdk.AccAddress, bool) {
	bz := k.regionStore(ctx).Get(ModuleAtKey(pos))
	if bz == nil {
		return nil, false
	}
	return sdk.AccAddress(bz), true
}

func (k Keeper) moduleCount(ctx sdk.Context) uint16 {
	return bytesToUint16(k.regionStore(ctx).Get(ModuleCountKey))
}

func (k Keeper) setModuleCount(ctx sdk.Context, count uint16) {
	store := k.regionStore(ctx)
	if count == 0 {
		store.Delete(ModuleCountKey)
		return
	}
	store.Set(ModuleCountKey, uint16ToBytes(count))
}

func (k Keeper) emitRouteEvent(ctx sdk.Context, eventType string, module sdk.AccAddress, ids []types.FunctionID) {
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = id.String()
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyModule, module.String()),
			sdk.NewAttribute(types.AttributeKeyFunctionIDs, strings.Join(joined, ",")),
		),
	)
}
