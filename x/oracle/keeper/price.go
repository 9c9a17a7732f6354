package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/oracle/types"
)

// SetPrice posts a reference price for a pair. The feeder must be in the
// registered feeder set and the price positive; UpdatedAt is stamped from
// the block time, so staleness is judged against chain time, not wall time.
func (k Keeper) SetPrice(ctx sdk.Context, feeder sdk.AccAddress, base, quote string, price math.LegacyDec) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	if !k.isFeeder(params, feeder) {
		return types.ErrNotFeeder.Wrap(feeder.String())
	}

	feed := types.PriceFeed{
		Base:      base,
		Quote:     quote,
		Price:     price,
		UpdatedAt: ctx.BlockTime().Unix(),
	}
	if err := feed.Validate(); err != nil {
		return err
	}
	if err := k.setFeed(ctx, feed); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePriceUpdated,
			sdk.NewAttribute(types.AttributeKeyBase, base),
			sdk.NewAttribute(types.AttributeKeyQuote, quote),
			sdk.NewAttribute(types.AttributeKeyPrice, price.String()),
			sdk.NewAttribute(types.AttributeKeyFeeder, feeder.String()),
		),
	)
	k.Logger(ctx).Info("reference price updated",
		"pair", base+"/"+quote,
		"price", price.String(),
		"feeder", feeder.String(),
	)
	return nil
}

// GetReferencePrice returns the posted price for a pair. The second return
// is false when no price was ever posted or the posted price has aged past
// the staleness horizon.
func (k Keeper) GetReferencePrice(ctx sdk.Context, base, quote string) (math.LegacyDec, bool) {
	feed, ok := k.getFeed(ctx, base, quote)
	if !ok {
		return math.LegacyDec{}, false
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.LegacyDec{}, false
	}
	age := ctx.BlockTime().Unix() - feed.UpdatedAt
	if age < 0 || uint64(age) > params.MaxPriceAgeSeconds {
		return math.LegacyDec{}, false
	}
	return feed.Price, true
}

// IterateFeeds walks every posted feed, fresh or stale.
func (k Keeper) IterateFeeds(ctx sdk.Context, cb func(feed types.PriceFeed) (stop bool)) {
	it := storetypes.KVStorePrefixIterator(k.regionStore(ctx), FeedKeyPrefix)
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var feed types.PriceFeed
		if err := json.Unmarshal(it.Value(), &feed); err != nil {
			continue
		}
		if cb(feed) {
			break
		}
	}
}

func (k Keeper) isFeeder(params types.Params, addr sdk.AccAddress) bool {
	s := addr.String()
	for _, feeder := range params.Feeders {
		if feeder == s {
			return true
		}
	}
	return false
}

func (k Keeper) getFeed(ctx sdk.Context, base, quote string) (types.PriceFeed, bool) {
	bz := k.regionStore(ctx).Get(FeedKey(base, quote))
	if bz == nil {
		return types.PriceFeed{}, false
	}
	var feed types.PriceFeed
	if err := json.Unmarshal(bz, &feed); err != nil {
		return types.PriceFeed{}, false
	}
	return feed, true
}

func (k Keeper) setFeed(ctx sdk.Context, feed types.PriceFeed) error {
	bz, err := json.Marshal(feed)
	if err != nil {
		return types.ErrInvalidPrice.Wrapf("marshal feed: %v", err)
	}
	k.regionStore(ctx).Set(FeedKey(feed.Base, feed.Quote), bz)
	return nil
}

// InitGenesis seeds the feed parameters and any pre-posted prices.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	for _, feed := range gs.Feeds {
		if err := k.setFeed(ctx, feed); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis captures the full feed state.
func (k Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{Params: params}
	k.IterateFeeds(ctx, func(feed types.PriceFeed) bool {
		gs.Feeds = append(gs.Feeds, feed)
		return false
	})
	return gs, nil
}
