package keeper

import (
	"strconv"

	"cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/asle-chain/asle/x/registry/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

// ApplyCut applies a batch of route mutations atomically, then optionally
// runs one initializer against the registry's own storage context. Only the
// registry owner may cut. The batch and the initializer run inside a
// branched store; nothing is written back unless every operation and the
// initializer succeed, so a failing cut leaves the registry byte-for-byte
// unchanged.
func (k Keeper) ApplyCut(ctx sdk.Context, caller sdk.AccAddress, ops []types.CutOp, initializer sdk.AccAddress, payload []byte) error {
	if err := k.assertOwner(ctx, caller); err != nil {
		return err
	}

	cacheCtx, write := ctx.CacheContext()

	for i, op := range ops {
		var err error
		switch op.Action {
		case types.CutAdd:
			err = k.AddRoutes(cacheCtx, op.Module, op.FunctionIDs)
		case types.CutReplace:
			err = k.ReplaceRoutes(cacheCtx, op.Module, op.FunctionIDs)
		case types.CutRemove:
			err = k.RemoveRoutes(cacheCtx, op.Module, op.FunctionIDs)
		default:
			err = types.ErrInvalidCutAction.Wrapf("action tag %d", uint8(op.Action))
		}
		if err != nil {
			return errors.Wrapf(err, "cut operation %d (%s)", i, op.Action)
		}
	}

	if err := k.runInitializer(cacheCtx, caller, initializer, payload); err != nil {
		return err
	}

	write()

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCutApplied,
			sdk.NewAttribute(types.AttributeKeyOperations, strconv.Itoa(len(ops))),
			sdk.NewAttribute(types.AttributeKeyInitializer, initializer.String()),
		),
	)
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "cut_applied"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("operations", strconv.Itoa(len(ops))),
		},
	)
	k.Logger(ctx).Info("cut applied",
		"operations", len(ops),
		"initializer", initializer.String(),
	)
	return nil
}

// runInitializer enforces the initializer contract and executes it in place.
// A null initializer must come with an empty payload. A real initializer
// needs a non-empty payload whose first four bytes select its entry point;
// unless the target is the registry's own address, the target must hold
// executable code. The handler runs against the same branched store the cut
// mutated, under the shared reentrancy latch.
func (k Keeper) runInitializer(ctx sdk.Context, caller, initializer sdk.AccAddress, payload []byte) error {
	if initializer.Empty() {
		if len(payload) != 0 {
			return types.ErrUnexpectedInitPayload.Wrapf("%d bytes", len(payload))
		}
		return nil
	}
	if len(payload) == 0 {
		return types.ErrEmptyInitPayload.Wrap(initializer.String())
	}
	if !initializer.Equals(k.self) && !k.code.HasCode(initializer) {
		return types.ErrModuleHasNoCode.Wrapf("initializer %s", initializer)
	}

	id, err := types.FunctionIDFromBytes(payload)
	if err != nil {
		return types.ErrEmptyInitPayload.Wrap(err.Error())
	}
	module, ok := k.code.Module(initializer)
	if !ok {
		return types.ErrModuleHasNoCode.Wrapf("initializer %s", initializer)
	}
	handler, ok := module.Handler(id)
	if !ok {
		return types.ErrInitializerFailed.Wrapf("no entry point %s on %s", id, initializer)
	}

	host := ctx.KVStore(k.storeKey)
	err = guard.WithLatch(host, func() (err error) {
		defer func() {
			// An initializer that dies without a reason still has to abort
			// the cut; substitute the generic failure.
			if r := recover(); r != nil {
				err = types.ErrInitializerFailed.Wrapf("%v", r)
			}
		}()
		_, err = handler(ctx, caller, payload[types.FunctionIDSize:])
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "initializer %s entry point %s", initializer, id)
	}
	return nil
}

// Cut op helpers for callers assembling batches programmatically.

// AddOp builds an Add cut operation.
func AddOp(module sdk.AccAddress, ids ...types.FunctionID) types.CutOp {
	return types.CutOp{Action: types.CutAdd, Module: module, FunctionIDs: ids}
}

// ReplaceOp builds a Replace cut operation.
func ReplaceOp(module sdk.AccAddress, ids ...types.FunctionID) types.CutOp {
	return types.CutOp{Action: types.CutReplace, Module: module, FunctionIDs: ids}
}

// RemoveOp builds a Remove cut operation; the module operand stays null by
// construction.
func RemoveOp(ids ...types.FunctionID) types.CutOp {
	return types.CutOp{Action: types.CutRemove, FunctionIDs: ids}
}
