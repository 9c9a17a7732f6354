package types

import (
	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AccessKeeper grants roles and compliance-mode clearance. The engine
// consults it before privileged and gated operations and carries none of
// its logic.
type AccessKeeper interface {
	IsAuthorized(ctx sdk.Context, role string, caller sdk.AccAddress) bool
	CanAccess(ctx sdk.Context, caller sdk.AccAddress, requiredMode uint32) bool
}

// SecurityKeeper owns the global pause switch and per-pool circuit
// breakers. CheckCircuitBreaker returns true when the trade may proceed
// at the given execution price.
type SecurityKeeper interface {
	IsPaused(ctx sdk.Context) bool
	CheckCircuitBreaker(ctx sdk.Context, poolID uint64, price math.LegacyDec) bool
}

// OracleKeeper serves reference prices for asset pairs. The second return
// is false when no fresh price is available.
type OracleKeeper interface {
	GetReferencePrice(ctx sdk.Context, base, quote string) (math.LegacyDec, bool)
}
