package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/oracle/types"
)

// Store key prefixes inside the oracle region. Feed keys use
// null-terminated denoms because denominations never contain a zero byte.
var (
	ParamsKey     = []byte{0x01}
	FeedKeyPrefix = []byte{0x02} // base ++ 0x00 ++ quote -> price feed
)

// FeedKey returns the price feed key for an asset pair.
func FeedKey(base, quote string) []byte {
	key := append(FeedKeyPrefix, base...)
	key = append(key, 0x00)
	return append(key, quote...)
}

// Keeper serves reference prices posted by registered feeders. It carries
// no aggregation: the latest fresh post per pair wins.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string
}

// NewKeeper creates a price feed Keeper. storeKey is the host's shared
// store; the keeper works inside the oracle region of it.
func NewKeeper(storeKey storetypes.StoreKey, authority string) Keeper {
	if authority == "" {
		panic("oracle keeper requires an authority address")
	}
	return Keeper{storeKey: storeKey, authority: authority}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the account allowed to change feed parameters.
func (k Keeper) GetAuthority() string {
	return k.authority
}

func (k Keeper) regionStore(ctx sdk.Context) storetypes.KVStore {
	return types.Region.Open(ctx.KVStore(k.storeKey))
}

// GetParams returns the feed parameters, defaults when none are stored.
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

// SetParams validates and stores the feed parameters.
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

// UpdateParams replaces the feed parameters. Only the authority may update.
func (k Keeper) UpdateParams(ctx sdk.Context, caller sdk.AccAddress, params types.Params) error {
	if caller.String() != k.authority {
		return types.ErrNotFeeder.Wrapf("expected authority %s, got %s", k.authority, caller)
	}
	return k.SetParams(ctx, params)
}
