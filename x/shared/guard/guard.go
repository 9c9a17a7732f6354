// Package guard implements the host-wide reentrancy latch. Execution is
// single-threaded, but a running operation can be re-invoked through a
// called-out module before it finishes, with its intermediate writes
// visible to the nested call. The latch is the one concurrency-control
// primitive: guarded operations refuse to start while another guarded
// operation is still in flight.
//
// The latch lives in its own storage region as a single byte, shared by
// every subsystem of the host.
package guard

import (
	"cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"

	"github.com/asle-chain/asle/x/shared/regions"
)

// Latch is the state of the shared reentrancy latch.
type Latch byte

const (
	// Unset means the latch has never been touched (no stored byte).
	Unset Latch = 0
	// Unlocked means no guarded operation is in flight.
	Unlocked Latch = 1
	// Locked means a guarded operation is in flight.
	Locked Latch = 2
)

// RegionTag names the latch's storage region.
const RegionTag = "asle.storage.guard"

// Region is the latch's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)

// ErrReentrantCall is returned by Enter when the latch is already Locked.
var ErrReentrantCall = errors.Register("guard", 2, "reentrant call")

var latchKey = []byte{0x01}

// State reports the latch state. host is the host's shared store, not the
// latch region itself.
func State(host storetypes.KVStore) Latch {
	bz := Region.Open(host).Get(latchKey)
	if len(bz) == 0 {
		return Unset
	}
	return Latch(bz[0])
}

// Enter acquires the latch. An Unset latch is initialized to Unlocked first,
// so the first guarded operation of a fresh host acquires normally. Enter
// fails if the latch is already Locked.
func Enter(host storetypes.KVStore) error {
	store := Region.Open(host)
	bz := store.Get(latchKey)
	if len(bz) > 0 && Latch(bz[0]) == Locked {
		return ErrReentrantCall
	}
	store.Set(latchKey, []byte{byte(Locked)})
	return nil
}

// Exit releases the latch unconditionally.
func Exit(host storetypes.KVStore) {
	Region.Open(host).Set(latchKey, []byte{byte(Unlocked)})
}

// WithLatch runs fn holding the latch, releasing it on every exit path.
func WithLatch(host storetypes.KVStore, fn func() error) error {
	if err := Enter(host); err != nil {
		return err
	}
	defer Exit(host)
	return fn()
}
