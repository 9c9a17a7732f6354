package keeper

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/asle-chain/asle/x/registry/types"
)

// Store key prefixes inside the registry region. The two arenas mirror the
// swap-and-pop layout: slot keys are position-indexed so big-endian
// iteration walks them in order.
var (
	RouteKeyPrefix       = []byte{0x01} // fid -> position ++ module address
	ModuleIDAtKeyPrefix  = []byte{0x02} // module ++ position -> fid (owned-id arena)
	ModuleIDCountPrefix  = []byte{0x03} // module -> owned-id count
	ModulePositionPrefix = []byte{0x04} // module -> global arena position
	ModuleAtKeyPrefix    = []byte{0x05} // position -> module address (global arena)
	ModuleCountKey       = []byte{0x06} // global module count
	OwnerKey             = []byte{0x07} // ownership record
)

// RouteKey returns the route entry key for a function identifier.
func RouteKey(id types.FunctionID) []byte {
	return append(RouteKeyPrefix, id.Bytes()...)
}

// ModuleIDAtKey returns the owned-id arena slot key for a module position.
func ModuleIDAtKey(module sdk.AccAddress, pos uint16) []byte {
	key := append(ModuleIDAtKeyPrefix, address.MustLengthPrefix(module)...)
	return append(key, uint16ToBytes(pos)...)
}

// ModuleIDArenaPrefix returns the iteration prefix over a module's owned-id
// arena.
func ModuleIDArenaPrefix(module sdk.AccAddress) []byte {
	return append(ModuleIDAtKeyPrefix, address.MustLengthPrefix(module)...)
}

// ModuleIDCountKey returns the owned-id count key for a module.
func ModuleIDCountKey(module sdk.AccAddress) []byte {
	return append(ModuleIDCountPrefix, address.MustLengthPrefix(module)...)
}

// ModulePositionKey returns the global-arena position key for a module.
func ModulePositionKey(module sdk.AccAddress) []byte {
	return append(ModulePositionPrefix, address.MustLengthPrefix(module)...)
}

// ModuleAtKey returns the global arena slot key for a position.
func ModuleAtKey(pos uint16) []byte {
	return append(ModuleAtKeyPrefix, uint16ToBytes(pos)...)
}

func uint16ToBytes(v uint16) []byte {
	bz := make([]byte, 2)
	binary.BigEndian.PutUint16(bz, v)
	return bz
}

func bytesToUint16(bz []byte) uint16 {
	if len(bz) != 2 {
		return 0
	}
	return binary.BigEndian.Uint16(bz)
}

// encodeRoute packs a route as big-endian position followed by the module
// address bytes. Resolution is the dispatch hot path, so the value stays a
// fixed-shape binary record rather than JSON.
func encodeRoute(r types.Route) []byte {
	bz := make([]byte, 2, 2+len(r.Module))
	binary.BigEndian.PutUint16(bz, r.Position)
	return append(bz, r.Module.Bytes()...)
}

func decodeRoute(bz []byte) (types.Route, bool) {
	if len(bz) < 3 {
		return types.Route{}, false
	}
	return types.Route{
		Position: binary.BigEndian.Uint16(bz[:2]),
		Module:   sdk.AccAddress(bz[2:]),
	}, true
}
