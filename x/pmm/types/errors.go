package types

import (
	"cosmossdk.io/errors"
)

// PMM engine sentinel errors
var (
	ErrPoolNotFound          = errors.Register(ModuleName, 2, "pool not found")
	ErrPoolInactive          = errors.Register(ModuleName, 3, "pool is inactive")
	ErrInvalidTokenPair      = errors.Register(ModuleName, 4, "invalid token pair")
	ErrZeroAmount            = errors.Register(ModuleName, 5, "amount must be positive")
	ErrZeroVirtualReserve    = errors.Register(ModuleName, 6, "virtual reserve must be positive")
	ErrCoefficientOutOfRange = errors.Register(ModuleName, 7, "slippage coefficient outside [0, 1]")
	ErrZeroOraclePrice       = errors.Register(ModuleName, 8, "oracle price must be positive")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 9, "insufficient liquidity for requested output")
	ErrSlippageExceeded      = errors.Register(ModuleName, 10, "output below the stated minimum")
	ErrInsufficientShares    = errors.Register(ModuleName, 11, "insufficient liquidity shares")
	ErrInsufficientFees      = errors.Register(ModuleName, 12, "no accrued fees to withdraw")
	ErrInvalidPoolState      = errors.Register(ModuleName, 13, "invalid pool state")
	ErrUnauthorized          = errors.Register(ModuleName, 14, "caller lacks the required role")
	ErrPaused                = errors.Register(ModuleName, 15, "engine is paused")
	ErrCircuitBreakerOpen    = errors.Register(ModuleName, 16, "circuit breaker rejected the trade")
	ErrAccessDenied          = errors.Register(ModuleName, 17, "caller lacks the required access mode")
	ErrOverflow              = errors.Register(ModuleName, 18, "arithmetic overflow")
	ErrUnknownDenom          = errors.Register(ModuleName, 19, "denomination not part of the pool pair")
	ErrInvalidParams         = errors.Register(ModuleName, 20, "invalid engine parameters")
	ErrInvalidGenesis        = errors.Register(ModuleName, 21, "invalid engine genesis state")
	ErrInvalidPayload        = errors.Register(ModuleName, 22, "malformed call payload")
	ErrTooManyPools          = errors.Register(ModuleName, 23, "pool limit reached")
)
