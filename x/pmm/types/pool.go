package types

import (
	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Pool is a proportional-market-maker pool over a single token pair.
//
// Real reserves track deposited inventory. Virtual reserves anchor the
// pricing curve and are fixed at creation. K controls how far the executed
// price may drift from the oracle price as inventory moves away from the
// virtual anchor: K = 0 quotes the oracle price flat, K = 1 degrades to a
// constant-product curve.
type Pool struct {
	ID                  uint64         `json:"id"`
	BaseDenom           string         `json:"base_denom"`
	QuoteDenom          string         `json:"quote_denom"`
	BaseReserve         math.Int       `json:"base_reserve"`
	QuoteReserve        math.Int       `json:"quote_reserve"`
	VirtualBaseReserve  math.Int       `json:"virtual_base_reserve"`
	VirtualQuoteReserve math.Int       `json:"virtual_quote_reserve"`
	K                   math.LegacyDec `json:"k"`
	OraclePrice         math.LegacyDec `json:"oracle_price"`
	TotalShares         math.Int       `json:"total_shares"`
	Active              bool           `json:"active"`
	Creator             string         `json:"creator"`
}

// Validate checks structural pool invariants.
func (p Pool) Validate() error {
	if p.BaseDenom == "" || p.QuoteDenom == "" {
		return ErrInvalidTokenPair.Wrap("empty denomination")
	}
	if p.BaseDenom == p.QuoteDenom {
		return ErrInvalidTokenPair.Wrapf("identical denominations %s", p.BaseDenom)
	}
	if p.BaseReserve.IsNil() || p.BaseReserve.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative base reserve")
	}
	if p.QuoteReserve.IsNil() || p.QuoteReserve.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative quote reserve")
	}
	if p.VirtualBaseReserve.IsNil() || !p.VirtualBaseReserve.IsPositive() {
		return ErrZeroVirtualReserve.Wrap("base side")
	}
	if p.VirtualQuoteReserve.IsNil() || !p.VirtualQuoteReserve.IsPositive() {
		return ErrZeroVirtualReserve.Wrap("quote side")
	}
	if p.K.IsNil() || p.K.IsNegative() || p.K.GT(math.LegacyOneDec()) {
		return ErrCoefficientOutOfRange.Wrapf("k %s", p.K)
	}
	if p.OraclePrice.IsNil() || !p.OraclePrice.IsPositive() {
		return ErrZeroOraclePrice
	}
	if p.TotalShares.IsNil() || p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative total shares")
	}
	if _, err := sdk.AccAddressFromBech32(p.Creator); err != nil {
		return ErrInvalidPoolState.Wrapf("creator address: %v", err)
	}
	return nil
}

// HasDenom reports whether denom is one side of the pool pair.
func (p Pool) HasDenom(denom string) bool {
	return denom == p.BaseDenom || denom == p.QuoteDenom
}

// OtherDenom returns the opposite side of the pair from denom.
func (p Pool) OtherDenom(denom string) (string, error) {
	switch denom {
	case p.BaseDenom:
		return p.QuoteDenom, nil
	case p.QuoteDenom:
		return p.BaseDenom, nil
	default:
		return "", ErrUnknownDenom.Wrapf("denom %s", denom)
	}
}

// Reserve returns the real reserve held for denom.
func (p Pool) Reserve(denom string) (math.Int, error) {
	switch denom {
	case p.BaseDenom:
		return p.BaseReserve, nil
	case p.QuoteDenom:
		return p.QuoteReserve, nil
	default:
		return math.Int{}, ErrUnknownDenom.Wrapf("denom %s", denom)
	}
}

// VirtualReserve returns the virtual anchor reserve for denom.
func (p Pool) VirtualReserve(denom string) (math.Int, error) {
	switch denom {
	case p.BaseDenom:
		return p.VirtualBaseReserve, nil
	case p.QuoteDenom:
		return p.VirtualQuoteReserve, nil
	default:
		return math.Int{}, ErrUnknownDenom.Wrapf("denom %s", denom)
	}
}

// Position records a provider's share balance in one pool.
type Position struct {
	PoolID   uint64   `json:"pool_id"`
	Provider string   `json:"provider"`
	Shares   math.Int `json:"shares"`
}

// Validate checks structural position invariants.
func (p Position) Validate() error {
	if _, err := sdk.AccAddressFromBech32(p.Provider); err != nil {
		return ErrInvalidGenesis.Wrapf("position provider: %v", err)
	}
	if p.Shares.IsNil() || !p.Shares.IsPositive() {
		return ErrInvalidGenesis.Wrapf("position shares must be positive, got %s", p.Shares)
	}
	return nil
}

// PoolFee is the pool-local fee balance accrued in one denomination.
type PoolFee struct {
	PoolID uint64   `json:"pool_id"`
	Denom  string   `json:"denom"`
	Amount math.Int `json:"amount"`
}

// ProtocolFee is the protocol treasury balance in one denomination.
type ProtocolFee struct {
	Denom  string   `json:"denom"`
	Amount math.Int `json:"amount"`
}
