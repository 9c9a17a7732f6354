package types

// Default engine parameters
const (
	DefaultTradeFeeBps         = 30
	DefaultProtocolFeeShareBps = 2000
	DefaultMaxPools            = 4096
)

// Params holds the engine-wide configuration.
//
// Access modes are opaque bitmasks interpreted by the access module:
// zero means open access, any other value must be satisfied by the
// caller's compliance flags.
type Params struct {
	TradeFeeBps         uint32 `json:"trade_fee_bps"`
	ProtocolFeeShareBps uint32 `json:"protocol_fee_share_bps"`
	TradeAccessMode     uint32 `json:"trade_access_mode"`
	LiquidityAccessMode uint32 `json:"liquidity_access_mode"`
	MaxPools            uint64 `json:"max_pools"`
}

// DefaultParams returns the engine defaults: a 30 bps trade fee with a
// 20% protocol share, open access, and a generous pool cap.
func DefaultParams() Params {
	return Params{
		TradeFeeBps:         DefaultTradeFeeBps,
		ProtocolFeeShareBps: DefaultProtocolFeeShareBps,
		TradeAccessMode:     0,
		LiquidityAccessMode: 0,
		MaxPools:            DefaultMaxPools,
	}
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	if p.TradeFeeBps >= BasisPointsDivisor {
		return ErrInvalidParams.Wrapf("trade fee %d bps must be below %d", p.TradeFeeBps, BasisPointsDivisor)
	}
	if p.ProtocolFeeShareBps > BasisPointsDivisor {
		return ErrInvalidParams.Wrapf("protocol fee share %d bps must not exceed %d", p.ProtocolFeeShareBps, BasisPointsDivisor)
	}
	if p.MaxPools == 0 {
		return ErrInvalidParams.Wrap("max pools must be positive")
	}
	return nil
}
