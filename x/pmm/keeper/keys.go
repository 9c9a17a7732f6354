package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// Store key prefixes inside the pmm region. Pool ids are 8-byte big-endian
// so iteration walks pools in creation order; the pair index uses
// null-terminated denoms because denominations never contain a zero byte.
var (
	PoolCountKey         = []byte{0x01} // next pool id counter
	PoolKeyPrefix        = []byte{0x02} // pool id -> pool record
	PairIndexKeyPrefix   = []byte{0x03} // base ++ 0x00 ++ quote ++ 0x00 ++ pool id -> pool id
	ShareKeyPrefix       = []byte{0x04} // pool id ++ provider -> share balance
	PoolFeeKeyPrefix     = []byte{0x05} // pool id ++ denom -> accrued pool fees
	ProtocolFeeKeyPrefix = []byte{0x06} // denom -> accrued protocol fees
	ParamsKey            = []byte{0x07} // engine parameters
)

// PoolKey returns the record key for a pool id.
func PoolKey(poolID uint64) []byte {
	return append(PoolKeyPrefix, sdk.Uint64ToBigEndian(poolID)...)
}

// PairIndexKey returns the pair index entry key for one pool of a pair.
func PairIndexKey(base, quote string, poolID uint64) []byte {
	key := PairIndexPrefix(base, quote)
	return append(key, sdk.Uint64ToBigEndian(poolID)...)
}

// PairIndexPrefix returns the iteration prefix over all pools of a pair.
func PairIndexPrefix(base, quote string) []byte {
	key := append(PairIndexKeyPrefix, base...)
	key = append(key, 0x00)
	key = append(key, quote...)
	return append(key, 0x00)
}

// ShareKey returns the share balance key for a provider in a pool.
func ShareKey(poolID uint64, provider sdk.AccAddress) []byte {
	key := SharePrefix(poolID)
	return append(key, address.MustLengthPrefix(provider)...)
}

// SharePrefix returns the iteration prefix over a pool's share balances.
func SharePrefix(poolID uint64) []byte {
	return append(ShareKeyPrefix, sdk.Uint64ToBigEndian(poolID)...)
}

// PoolFeeKey returns the accrued pool fee key for one denomination.
func PoolFeeKey(poolID uint64, denom string) []byte {
	return append(PoolFeePrefix(poolID), denom...)
}

// PoolFeePrefix returns the iteration prefix over a pool's fee balances.
func PoolFeePrefix(poolID uint64) []byte {
	return append(PoolFeeKeyPrefix, sdk.Uint64ToBigEndian(poolID)...)
}

// ProtocolFeeKey returns the protocol fee key for one denomination.
func ProtocolFeeKey(denom string) []byte {
	return append(ProtocolFeeKeyPrefix, denom...)
}
