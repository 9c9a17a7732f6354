package types

import (
	"github.com/asle-chain/asle/x/shared/regions"
)

const (
	// ModuleName is the price feed's name and error codespace.
	ModuleName = "oracle"

	// RegionTag derives the feed's storage region.
	RegionTag = "asle.storage.oracle"
)

// Region is the feed's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)

// RolePriceFeeder is required from the access collaborator to post prices.
const RolePriceFeeder = "price_feeder"
