package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/asle-chain/asle/x/pmm/types"
)

// Pricing curve of the proportional market maker. All functions here are
// pure: they take reserves and coefficients and return amounts, leaving
// state mutation to the keeper operations that call them.

// MidPrice returns the instantaneous pool price around the oracle anchor.
//
//	p = i · (1 + k·(Q−vQ)/vQ)   when Q ≥ vQ
//	p = i · (1 − k·(vQ−Q)/vQ)   when Q < vQ
//
// A quote-side surplus over the virtual anchor prices base above oracle, a
// deficit below it. Fails when the virtual quote reserve is zero.
func MidPrice(i, k math.LegacyDec, quoteReserve, virtualQuoteReserve math.Int) (math.LegacyDec, error) {
	if !virtualQuoteReserve.IsPositive() {
		return math.LegacyDec{}, types.ErrZeroVirtualReserve.Wrap("quote side")
	}

	vq := math.LegacyNewDecFromInt(virtualQuoteReserve)
	q := math.LegacyNewDecFromInt(quoteReserve)

	if quoteReserve.GTE(virtualQuoteReserve) {
		deviation := q.Sub(vq).Quo(vq)
		return i.Mul(math.LegacyOneDec().Add(k.Mul(deviation))), nil
	}
	deviation := vq.Sub(q).Quo(vq)
	return i.Mul(math.LegacyOneDec().Sub(k.Mul(deviation))), nil
}

// SwapOutput converts amountIn through the deviation-adjusted oracle price.
//
// The post-trade input reserve is compared against its virtual anchor; the
// relative deviation, scaled by k, adjusts the oracle price against the
// trader. When the adjusted conversion yields nothing, or would consume the
// entire output reserve, the quote falls back to a constant-product curve
// over effective reserves (the larger of real and virtual on each side),
// which keeps a bounded quote available near depletion.
//
// The returned amount is gross of trading fees and satisfies
// 0 < amountOut ≤ reserveOut.
func SwapOutput(amountIn, reserveIn, reserveOut, vReserveIn, vReserveOut math.Int, k, i math.LegacyDec) (math.Int, error) {
	if !amountIn.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("amount in")
	}
	if !vReserveIn.IsPositive() {
		return math.Int{}, types.ErrZeroVirtualReserve.Wrap("input side")
	}
	if !vReserveOut.IsPositive() {
		return math.Int{}, types.ErrZeroVirtualReserve.Wrap("output side")
	}
	if k.IsNegative() || k.GT(math.LegacyOneDec()) {
		return math.Int{}, types.ErrCoefficientOutOfRange.Wrapf("k %s", k)
	}
	if !i.IsPositive() {
		return math.Int{}, types.ErrZeroOraclePrice
	}

	newReserveIn, err := SafeAdd(reserveIn, amountIn)
	if err != nil {
		return math.Int{}, err
	}

	vIn := math.LegacyNewDecFromInt(vReserveIn)
	var deviation math.LegacyDec
	if newReserveIn.GTE(vReserveIn) {
		deviation = math.LegacyNewDecFromInt(newReserveIn.Sub(vReserveIn)).Quo(vIn)
	} else {
		deviation = math.LegacyNewDecFromInt(vReserveIn.Sub(newReserveIn)).Quo(vIn)
	}
	adjustment := k.Mul(deviation)

	// A growing input reserve means the trader is selling the abundant
	// side: the price moves below oracle. A shrinking deficit moves it
	// above.
	var adjustedPrice math.LegacyDec
	if newReserveIn.GTE(vReserveIn) {
		adjustedPrice = i.Mul(math.LegacyOneDec().Sub(adjustment))
	} else {
		adjustedPrice = i.Mul(math.LegacyOneDec().Add(adjustment))
	}

	amountOut := math.ZeroInt()
	if adjustedPrice.IsPositive() {
		amountOut = adjustedPrice.MulInt(amountIn).TruncateInt()
	}

	if amountOut.IsZero() || amountOut.GTE(reserveOut) {
		amountOut, err = constantProductFallback(amountIn, reserveIn, reserveOut, vReserveIn, vReserveOut)
		if err != nil {
			return math.Int{}, err
		}
	}

	if amountOut.IsZero() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("output rounds to zero")
	}
	if amountOut.GT(reserveOut) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("output %s exceeds reserve %s", amountOut, reserveOut)
	}
	return amountOut, nil
}

// constantProductFallback quotes x·y = const over effective reserves, the
// larger of real and virtual on each side. The quote is strictly below the
// effective output reserve, so depletion of the real reserve stays the only
// failure mode.
func constantProductFallback(amountIn, reserveIn, reserveOut, vReserveIn, vReserveOut math.Int) (math.Int, error) {
	effectiveIn := math.MaxInt(reserveIn, vReserveIn)
	effectiveOut := math.MaxInt(reserveOut, vReserveOut)

	denominator, err := SafeAdd(effectiveIn, amountIn)
	if err != nil {
		return math.Int{}, err
	}
	return SafeMulDiv(effectiveOut, amountIn, denominator)
}

// LPShares computes the liquidity shares minted for a deposit. The first
// provider of an empty pool receives the geometric mean of the deposit,
// sqrt(base·quote); later providers receive the proportional minimum
// min(base·S/B, quote·S/Q), so a skewed deposit ratio can never dilute
// existing holders.
func LPShares(baseAmount, quoteAmount, baseReserve, quoteReserve, totalSupply math.Int) (math.Int, error) {
	if !baseAmount.IsPositive() || !quoteAmount.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("liquidity deposit")
	}

	if totalSupply.IsZero() {
		product, err := SafeMul(baseAmount, quoteAmount)
		if err != nil {
			return math.Int{}, err
		}
		return math.NewIntFromBigInt(new(big.Int).Sqrt(product.BigInt())), nil
	}

	if !baseReserve.IsPositive() || !quoteReserve.IsPositive() {
		return math.Int{}, types.ErrInvalidPoolState.Wrap("supply without reserves")
	}

	byBase, err := SafeMulDiv(baseAmount, totalSupply, baseReserve)
	if err != nil {
		return math.Int{}, err
	}
	byQuote, err := SafeMulDiv(quoteAmount, totalSupply, quoteReserve)
	if err != nil {
		return math.Int{}, err
	}
	return math.MinInt(byBase, byQuote), nil
}
