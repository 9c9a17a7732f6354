package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/security/types"
)

// Store key prefixes inside the security region.
var (
	PauseKey         = []byte{0x01} // pause state
	BreakerKeyPrefix = []byte{0x02} // pool id -> breaker state
)

// BreakerKey returns the breaker record key for a pool.
func BreakerKey(poolID uint64) []byte {
	return append(BreakerKeyPrefix, sdk.Uint64ToBigEndian(poolID)...)
}

// AccessChecker is the slice of the access module the security controls
// need: pausing requires the pauser role, breaker administration the
// security-council role.
type AccessChecker interface {
	IsAuthorized(ctx sdk.Context, role string, account sdk.AccAddress) bool
}

// Roles consulted through the access checker.
const (
	RolePauser          = "pauser"
	RoleSecurityCouncil = "security_council"
)

// Keeper owns the host-wide pause switch and the per-pool circuit
// breakers. The pool engine consults both before mutating state; the
// keeper never reaches into engine state itself.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string
	access    AccessChecker
}

// NewKeeper creates a security Keeper. storeKey is the host's shared
// store; the keeper works inside the security region of it.
func NewKeeper(storeKey storetypes.StoreKey, authority string, access AccessChecker) Keeper {
	if authority == "" {
		panic("security keeper requires an authority address")
	}
	if access == nil {
		panic("security keeper requires an access checker")
	}
	return Keeper{storeKey: storeKey, authority: authority, access: access}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the account allowed to administer breakers.
func (k Keeper) GetAuthority() string {
	return k.authority
}

func (k Keeper) regionStore(ctx sdk.Context) storetypes.KVStore {
	return types.Region.Open(ctx.KVStore(k.storeKey))
}

func (k Keeper) mayOperate(ctx sdk.Context, caller sdk.AccAddress, role string) bool {
	return caller.String() == k.authority || k.access.IsAuthorized(ctx, role, caller)
}

// IsPaused reports the global pause switch.
func (k Keeper) IsPaused(ctx sdk.Context) bool {
	state, ok := k.pauseState(ctx)
	return ok && state.Paused
}

// PauseInfo returns the full pause record.
func (k Keeper) PauseInfo(ctx sdk.Context) types.PauseState {
	state, _ := k.pauseState(ctx)
	return state
}

// Pause halts every pausable operation of the host. The caller needs the
// pauser role or must be the authority.
func (k Keeper) Pause(ctx sdk.Context, caller sdk.AccAddress, reason string) error {
	if !k.mayOperate(ctx, caller, RolePauser) {
		return types.ErrUnauthorized.Wrapf("%s needs role %s", caller, RolePauser)
	}
	if k.IsPaused(ctx) {
		return types.ErrAlreadyPaused
	}

	k.setPauseState(ctx, types.PauseState{Paused: true, Reason: reason, Actor: caller.String()})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePaused,
			sdk.NewAttribute(types.AttributeKeyActor, caller.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	k.Logger(ctx).Info("host paused", "actor", caller.String(), "reason", reason)
	return nil
}

// Unpause lifts the global pause.
func (k Keeper) Unpause(ctx sdk.Context, caller sdk.AccAddress) error {
	if !k.mayOperate(ctx, caller, RolePauser) {
		return types.ErrUnauthorized.Wrapf("%s needs role %s", caller, RolePauser)
	}
	if !k.IsPaused(ctx) {
		return types.ErrNotPaused
	}

	k.setPauseState(ctx, types.PauseState{})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeUnpaused,
			sdk.NewAttribute(types.AttributeKeyActor, caller.String()),
		),
	)
	k.Logger(ctx).Info("host unpaused", "actor", caller.String())
	return nil
}

func (k Keeper) pauseState(ctx sdk.Context) (types.PauseState, bool) {
	bz := k.regionStore(ctx).Get(PauseKey)
	if bz == nil {
		return types.PauseState{}, false
	}
	var state types.PauseState
	if err := json.Unmarshal(bz, &state); err != nil {
		return types.PauseState{}, false
	}
	return state, true
}

func (k Keeper) setPauseState(ctx sdk.Context, state types.PauseState) {
	bz, err := json.Marshal(state)
	if err != nil {
		panic(err)
	}
	k.regionStore(ctx).Set(PauseKey, bz)
}

// InitGenesis seeds the pause switch and breaker records.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if gs.Pause.Paused {
		k.setPauseState(ctx, gs.Pause)
	}
	for _, pb := range gs.Breakers {
		if err := k.setBreakerState(ctx, pb.PoolID, pb.Breaker); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis captures the full security state.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	gs := &types.GenesisState{Pause: k.PauseInfo(ctx)}

	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), BreakerKeyPrefix)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		poolID := sdk.BigEndianToUint64(it.Key()[len(BreakerKeyPrefix):])
		var state types.BreakerState
		if err := json.Unmarshal(it.Value(), &state); err != nil {
			continue
		}
		gs.Breakers = append(gs.Breakers, types.PoolBreaker{PoolID: poolID, Breaker: state})
	}
	return gs
}
