package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/asle-chain/asle/x/pmm/types"
)

// maxAmount bounds every stored amount to the 256-bit range math.Int
// supports.
var maxAmount = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

// SafeAdd adds two amounts with overflow checking.
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrap("addition")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts b from a with underflow checking.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrOverflow.Wrapf("cannot subtract %s from %s", b, a)
	}
	return a.Sub(b), nil
}

// SafeMul multiplies two amounts with overflow checking.
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrap("multiplication")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeMulDiv computes a*b/c with a full-precision intermediate product,
// truncating the quotient. Only the final result is range checked.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, types.ErrOverflow.Wrap("division by zero")
	}
	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	result := new(big.Int).Quo(intermediate, c.BigInt())
	if result.Cmp(maxAmount) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrap("multiply-divide")
	}
	return math.NewIntFromBigInt(result), nil
}
