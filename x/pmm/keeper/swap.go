package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/asle-chain/asle/x/pmm/types"
	"github.com/asle-chain/asle/x/shared/guard"
)

// swapQuote is the result of pricing one swap against current pool state.
type swapQuote struct {
	denomOut    string
	grossOut    math.Int
	fee         math.Int
	poolFee     math.Int
	protocolFee math.Int
	netOut      math.Int
	// execPrice is the realized quote-per-base price of the trade,
	// orientation-independent so the circuit breaker compares like with
	// like across both directions.
	execPrice math.LegacyDec
}

// quoteSwap prices amountIn of denomIn against pool without mutating state.
func (k Keeper) quoteSwap(ctx sdk.Context, pool types.Pool, denomIn string, amountIn math.Int) (swapQuote, error) {
	var q swapQuote

	denomOut, err := pool.OtherDenom(denomIn)
	if err != nil {
		return q, err
	}
	q.denomOut = denomOut

	reserveIn, err := pool.Reserve(denomIn)
	if err != nil {
		return q, err
	}
	reserveOut, err := pool.Reserve(denomOut)
	if err != nil {
		return q, err
	}
	vIn, err := pool.VirtualReserve(denomIn)
	if err != nil {
		return q, err
	}
	vOut, err := pool.VirtualReserve(denomOut)
	if err != nil {
		return q, err
	}

	// The oracle anchor prices base in quote units; the reverse direction
	// trades through its inverse.
	price := pool.OraclePrice
	if denomIn == pool.QuoteDenom {
		if !price.IsPositive() {
			return q, types.ErrZeroOraclePrice
		}
		price = math.LegacyOneDec().Quo(price)
	}

	q.grossOut, err = SwapOutput(amountIn, reserveIn, reserveOut, vIn, vOut, pool.K, price)
	if err != nil {
		return q, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return q, err
	}
	divisor := math.NewInt(types.BasisPointsDivisor)
	q.fee, err = SafeMulDiv(q.grossOut, math.NewInt(int64(params.TradeFeeBps)), divisor)
	if err != nil {
		return q, err
	}
	q.protocolFee, err = SafeMulDiv(q.fee, math.NewInt(int64(params.ProtocolFeeShareBps)), divisor)
	if err != nil {
		return q, err
	}
	q.poolFee = q.fee.Sub(q.protocolFee)
	q.netOut = q.grossOut.Sub(q.fee)
	if !q.netOut.IsPositive() {
		return q, types.ErrInsufficientLiquidity.Wrap("output consumed by fees")
	}

	if denomIn == pool.BaseDenom {
		q.execPrice = math.LegacyNewDecFromInt(q.grossOut).Quo(math.LegacyNewDecFromInt(amountIn))
	} else {
		q.execPrice = math.LegacyNewDecFromInt(amountIn).Quo(math.LegacyNewDecFromInt(q.grossOut))
	}
	return q, nil
}

// Swap trades amountIn of denomIn against the pool. The trader receives the
// curve output net of the trading fee; reserves move by the gross amounts,
// so the fee is paid by the trader rather than drained from reserves. The
// execution price is checked against the pool's circuit breaker before any
// mutation, and the whole trade fails if the net output falls below
// minAmountOut.
func (k Keeper) Swap(ctx sdk.Context, trader sdk.AccAddress, poolID uint64, denomIn string, amountIn, minAmountOut math.Int) (math.Int, error) {
	poolLabel := fmt.Sprintf("%d", poolID)

	if trader.Empty() {
		return math.Int{}, types.ErrInvalidPoolState.Wrap("empty trader")
	}
	if !amountIn.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("amount in")
	}
	if minAmountOut.IsNil() || minAmountOut.IsNegative() {
		return math.Int{}, types.ErrZeroAmount.Wrap("negative minimum output")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.Active {
		return math.Int{}, types.ErrPoolInactive.Wrapf("pool %d", poolID)
	}
	if k.security.IsPaused(ctx) {
		return math.Int{}, types.ErrPaused
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if !k.access.CanAccess(ctx, trader, params.TradeAccessMode) {
		return math.Int{}, types.ErrAccessDenied.Wrapf("%s lacks mode %d", trader, params.TradeAccessMode)
	}

	var q swapQuote
	err = guard.WithLatch(k.hostStore(ctx), func() error {
		q, err = k.quoteSwap(ctx, pool, denomIn, amountIn)
		if err != nil {
			return err
		}
		if q.netOut.LT(minAmountOut) {
			return types.ErrSlippageExceeded.Wrapf("minimum %s, net output %s", minAmountOut, q.netOut)
		}
		if !k.security.CheckCircuitBreaker(ctx, poolID, q.execPrice) {
			return types.ErrCircuitBreakerOpen.Wrapf("pool %d at price %s", poolID, q.execPrice)
		}

		switch denomIn {
		case pool.BaseDenom:
			if pool.BaseReserve, err = SafeAdd(pool.BaseReserve, amountIn); err != nil {
				return err
			}
			if pool.QuoteReserve, err = SafeSub(pool.QuoteReserve, q.grossOut); err != nil {
				return types.ErrInsufficientLiquidity.Wrapf("output %s exceeds quote reserve", q.grossOut)
			}
		default:
			if pool.QuoteReserve, err = SafeAdd(pool.QuoteReserve, amountIn); err != nil {
				return err
			}
			if pool.BaseReserve, err = SafeSub(pool.BaseReserve, q.grossOut); err != nil {
				return types.ErrInsufficientLiquidity.Wrapf("output %s exceeds base reserve", q.grossOut)
			}
		}

		if err := k.accrueSwapFees(ctx, poolID, q.denomOut, q.poolFee, q.protocolFee); err != nil {
			return err
		}
		return k.SetPool(ctx, pool)
	})
	if err != nil {
		k.metrics.SwapsTotal.WithLabelValues(poolLabel, denomIn, q.denomOut, "failed").Inc()
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwapExecuted,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyDenomIn, denomIn),
			sdk.NewAttribute(types.AttributeKeyDenomOut, q.denomOut),
			sdk.NewAttribute(types.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, q.netOut.String()),
			sdk.NewAttribute(types.AttributeKeyFee, q.fee.String()),
		),
	)
	k.metrics.SwapsTotal.WithLabelValues(poolLabel, denomIn, q.denomOut, "success").Inc()
	k.metrics.SwapVolume.WithLabelValues(poolLabel, denomIn).Add(floatAmount(amountIn))
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "swap_executed"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("pool_id", poolLabel),
			telemetry.NewLabel("denom_in", denomIn),
		},
	)
	k.Logger(ctx).Info("swap executed",
		"pool_id", poolID,
		"trader", trader.String(),
		"amount_in", amountIn.String(),
		"amount_out", q.netOut.String(),
		"fee", q.fee.String(),
	)
	return q.netOut, nil
}

// GetQuote prices a prospective swap without mutating state. It returns the
// net output after fees and the execution price the trade would realize.
func (k Keeper) GetQuote(ctx sdk.Context, poolID uint64, denomIn string, amountIn math.Int) (amountOut math.Int, execPrice math.LegacyDec, err error) {
	if !amountIn.IsPositive() {
		return math.Int{}, math.LegacyDec{}, types.ErrZeroAmount.Wrap("amount in")
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, math.LegacyDec{}, err
	}
	if !pool.Active {
		return math.Int{}, math.LegacyDec{}, types.ErrPoolInactive.Wrapf("pool %d", poolID)
	}

	q, err := k.quoteSwap(ctx, pool, denomIn, amountIn)
	if err != nil {
		return math.Int{}, math.LegacyDec{}, err
	}
	return q.netOut, q.execPrice, nil
}
