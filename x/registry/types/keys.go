package types

import (
	"github.com/asle-chain/asle/x/shared/regions"
)

const (
	// ModuleName is the registry's name and error codespace.
	ModuleName = "registry"

	// StoreKey names the host's single shared KVStore. Every subsystem of
	// the host works inside its own region of this one store.
	StoreKey = "host"

	// RegionTag derives the registry's storage region.
	RegionTag = "asle.storage.registry"
)

// Region is the registry's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)
