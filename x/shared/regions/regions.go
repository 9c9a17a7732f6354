// Package regions carves the host's single shared KVStore into disjoint
// partitions, one per subsystem. A region is addressed by the Keccak-256
// digest of a human-readable tag, so independently developed modules can
// never alias each other's state: two modules collide only if they reserve
// the same tag, and reservation is checked process-wide at init.
package regions

import (
	"encoding/hex"
	"fmt"
	"sync"

	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	"golang.org/x/crypto/sha3"
)

// KeySize is the byte length of a region key.
const KeySize = 32

// Region identifies one partition of the shared store. The zero value is not
// a valid region; obtain one through New or MustNew.
type Region struct {
	tag string
	key [KeySize]byte
}

var (
	mu    sync.Mutex
	byTag = make(map[string]Region)
	byKey = make(map[[KeySize]byte]string)
)

// New derives the region for tag and reserves it process-wide. It fails on an
// empty tag, on a tag reserved twice, and on a digest collision with a
// previously reserved tag.
func New(tag string) (Region, error) {
	if tag == "" {
		return Region{}, fmt.Errorf("region tag must not be empty")
	}
	key := Derive(tag)

	mu.Lock()
	defer mu.Unlock()
	if _, ok := byTag[tag]; ok {
		return Region{}, fmt.Errorf("region tag %q already reserved", tag)
	}
	if owner, ok := byKey[key]; ok {
		return Region{}, fmt.Errorf("region key %x of %q collides with tag %q", key, tag, owner)
	}

	r := Region{tag: tag, key: key}
	byTag[tag] = r
	byKey[key] = tag
	return r, nil
}

// MustNew is New for package-level region variables. It panics on error,
// which surfaces tag collisions at process start rather than at first use.
func MustNew(tag string) Region {
	r, err := New(tag)
	if err != nil {
		panic(err)
	}
	return r
}

// Derive computes the 32-byte key for tag without reserving it.
func Derive(tag string) [KeySize]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(tag))
	var key [KeySize]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Tag returns the tag the region was derived from.
func (r Region) Tag() string { return r.tag }

// Key returns the region's 32-byte store prefix.
func (r Region) Key() []byte {
	key := r.key
	return key[:]
}

func (r Region) String() string {
	return fmt.Sprintf("%s[%s]", r.tag, hex.EncodeToString(r.key[:]))
}

// Open returns a view of parent confined to this region. All keys written
// through the returned store carry the region key as an invisible prefix.
func (r Region) Open(parent storetypes.KVStore) storetypes.KVStore {
	return prefix.NewStore(parent, r.Key())
}
