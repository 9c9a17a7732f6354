package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/pmm/types"
)

// RegisterInvariants registers all pool engine invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "share-supply", ShareSupplyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "pool-state", PoolStateInvariant(k))
}

// AllInvariants runs all invariants of the pool engine
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := ShareSupplyInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return PoolStateInvariant(k)(ctx)
	}
}

// ShareSupplyInvariant checks that the sum of all holder share balances of
// each pool equals that pool's total share supply.
func ShareSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		_ = k.IteratePools(ctx, func(pool types.Pool) bool {
			sum := math.ZeroInt()
			k.IterateShareBalances(ctx, pool.ID, func(_ sdk.AccAddress, shares math.Int) bool {
				sum = sum.Add(shares)
				return false
			})
			if !sum.Equal(pool.TotalShares) {
				count++
				msg += fmt.Sprintf("pool %d: positions sum to %s, total shares %s\n", pool.ID, sum, pool.TotalShares)
			}
			return false
		})

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "share-supply",
			fmt.Sprintf("found %d share supply mismatches\n%s", count, msg),
		), broken
	}
}

// PoolStateInvariant checks each pool's structural invariants: positive
// virtual reserves, k within [0, 1], non-negative reserves, and
// non-negative accrued fee balances.
func PoolStateInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		_ = k.IteratePools(ctx, func(pool types.Pool) bool {
			if err := pool.Validate(); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %v\n", pool.ID, err)
			}
			for _, denom := range []string{pool.BaseDenom, pool.QuoteDenom} {
				if k.GetPoolFees(ctx, pool.ID, denom).IsNegative() {
					count++
					msg += fmt.Sprintf("pool %d: negative fee balance in %s\n", pool.ID, denom)
				}
			}
			return false
		})

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "pool-state",
			fmt.Sprintf("found %d pool state violations\n%s", count, msg),
		), broken
	}
}
