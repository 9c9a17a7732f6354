package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Price feed sentinel errors
var (
	ErrNotFeeder      = errors.Register(ModuleName, 2, "caller is not a registered feeder")
	ErrInvalidPair    = errors.Register(ModuleName, 3, "invalid asset pair")
	ErrInvalidPrice   = errors.Register(ModuleName, 4, "price must be positive")
	ErrInvalidParams  = errors.Register(ModuleName, 5, "invalid feed parameters")
	ErrInvalidGenesis = errors.Register(ModuleName, 6, "invalid feed genesis state")
)

// Price feed event types and attribute keys
const (
	EventTypePriceUpdated = "price_updated"

	AttributeKeyBase   = "base"
	AttributeKeyQuote  = "quote"
	AttributeKeyPrice  = "price"
	AttributeKeyFeeder = "feeder"
)

// DefaultMaxPriceAgeSeconds is how long a posted price stays fresh.
const DefaultMaxPriceAgeSeconds = 300

// Params configures the feed: the accounts allowed to post prices and the
// staleness horizon after which a posted price stops being served.
type Params struct {
	Feeders            []string `json:"feeders"`
	MaxPriceAgeSeconds uint64   `json:"max_price_age_seconds"`
}

// DefaultParams returns a feed with no feeders and a five-minute horizon.
func DefaultParams() Params {
	return Params{MaxPriceAgeSeconds: DefaultMaxPriceAgeSeconds}
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	if p.MaxPriceAgeSeconds == 0 {
		return ErrInvalidParams.Wrap("max price age must be positive")
	}
	seen := make(map[string]struct{}, len(p.Feeders))
	for _, feeder := range p.Feeders {
		if feeder == "" {
			return ErrInvalidParams.Wrap("empty feeder address")
		}
		if _, ok := seen[feeder]; ok {
			return ErrInvalidParams.Wrapf("duplicate feeder %s", feeder)
		}
		seen[feeder] = struct{}{}
	}
	return nil
}

// PriceFeed is the latest posted reference price for one asset pair.
// UpdatedAt is the posting block time in unix seconds.
type PriceFeed struct {
	Base      string         `json:"base"`
	Quote     string         `json:"quote"`
	Price     math.LegacyDec `json:"price"`
	UpdatedAt int64          `json:"updated_at"`
}

// Validate checks structural feed invariants.
func (f PriceFeed) Validate() error {
	if f.Base == "" || f.Quote == "" || f.Base == f.Quote {
		return ErrInvalidPair.Wrapf("%s/%s", f.Base, f.Quote)
	}
	if f.Price.IsNil() || !f.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// GenesisState seeds the feed at startup.
type GenesisState struct {
	Params Params      `json:"params"`
	Feeds  []PriceFeed `json:"feeds,omitempty"`
}

// DefaultGenesis returns an empty feed with default parameters.
func DefaultGenesis() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

// Validate checks the genesis state.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	type pair struct{ base, quote string }
	seen := make(map[pair]struct{}, len(gs.Feeds))
	for _, feed := range gs.Feeds {
		if err := feed.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("feed %s/%s: %v", feed.Base, feed.Quote, err)
		}
		key := pair{feed.Base, feed.Quote}
		if _, ok := seen[key]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate feed %s/%s", feed.Base, feed.Quote)
		}
		seen[key] = struct{}{}
	}
	return nil
}
