package keeper

import (
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
)

// Keeper runs the proportional-market-maker pool engine: pool records,
// liquidity share accounting, curve pricing against oracle anchors, and
// fee accrual. Security, access, and price-feed decisions are delegated
// to the collaborator keepers and never duplicated here.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string

	access   types.AccessKeeper
	security types.SecurityKeeper
	oracle   types.OracleKeeper

	metrics *Metrics
}

// NewKeeper creates a pool engine Keeper. storeKey is the host's shared
// store; the keeper works inside the pmm region of it. authority is the
// account allowed to change engine parameters.
func NewKeeper(
	storeKey storetypes.StoreKey,
	authority string,
	access types.AccessKeeper,
	security types.SecurityKeeper,
	oracle types.OracleKeeper,
) Keeper {
	if authority == "" {
		panic("pmm keeper requires an authority address")
	}
	if access == nil {
		panic("pmm keeper requires an access keeper")
	}
	if security == nil {
		panic("pmm keeper requires a security keeper")
	}
	if oracle == nil {
		panic("pmm keeper requires an oracle keeper")
	}
	return Keeper{
		storeKey:  storeKey,
		authority: authority,
		access:    access,
		security:  security,
		oracle:    oracle,
		metrics:   NewMetrics(),
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the account allowed to change engine parameters.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// StoreKey returns the host store key the engine operates on.
func (k Keeper) StoreKey() storetypes.StoreKey {
	return k.storeKey
}

// hostStore returns the raw host store backing the engine. The shared
// reentrancy latch lives outside the pmm region, so latched operations
// hand this to the guard rather than the region store.
func (k Keeper) hostStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// regionStore opens the engine's region of the host store.
func (k Keeper) regionStore(ctx sdk.Context) storetypes.KVStore {
	return types.Region.Open(ctx.KVStore(k.storeKey))
}
