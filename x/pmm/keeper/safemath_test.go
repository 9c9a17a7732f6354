package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
	"github.com/asle-chain/asle/x/pmm/types"
)

// nearMax is just under the 256-bit amount bound.
func nearMax() math.Int {
	limit := new(big.Int).Exp(big.NewInt(2), big.NewInt(255), nil)
	return math.NewIntFromBigInt(limit)
}

func TestSafeAdd(t *testing.T) {
	sum, err := pmmkeeper.SafeAdd(math.NewInt(2), math.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(5), sum)

	_, err = pmmkeeper.SafeAdd(nearMax(), nearMax())
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestSafeSub(t *testing.T) {
	diff, err := pmmkeeper.SafeSub(math.NewInt(5), math.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(2), diff)

	_, err = pmmkeeper.SafeSub(math.NewInt(3), math.NewInt(5))
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestSafeMul(t *testing.T) {
	product, err := pmmkeeper.SafeMul(math.NewInt(6), math.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(42), product)

	zero, err := pmmkeeper.SafeMul(math.ZeroInt(), nearMax())
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	_, err = pmmkeeper.SafeMul(nearMax(), math.NewInt(4))
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestSafeMulDiv(t *testing.T) {
	// The basis-point fee slice truncates toward zero: 1900·30/10000 = 5.
	fee, err := pmmkeeper.SafeMulDiv(math.NewInt(1900), math.NewInt(30), math.NewInt(10000))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(5), fee)

	// The intermediate product may exceed the amount bound as long as the
	// quotient fits.
	quotient, err := pmmkeeper.SafeMulDiv(nearMax(), math.NewInt(10), math.NewInt(20))
	require.NoError(t, err)
	require.Equal(t, nearMax().QuoRaw(2), quotient)

	_, err = pmmkeeper.SafeMulDiv(nearMax(), math.NewInt(10000), math.NewInt(2))
	require.ErrorIs(t, err, types.ErrOverflow)

	_, err = pmmkeeper.SafeMulDiv(math.NewInt(1), math.NewInt(1), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrOverflow)
}
