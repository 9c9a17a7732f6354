package types

import (
	"github.com/asle-chain/asle/x/shared/regions"
)

const (
	// ModuleName is the pool engine's name and error codespace.
	ModuleName = "pmm"

	// RegionTag derives the engine's storage region.
	RegionTag = "asle.storage.pmm"
)

// Region is the engine's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)

// Roles the engine requires from the access collaborator.
const (
	RolePoolCreator     = "pool_creator"
	RoleFeeManager      = "fee_manager"
	RoleSecurityCouncil = "security_council"
)

// BasisPointsDivisor scales basis-point parameters: 10000 bps = 100%.
const BasisPointsDivisor = 10000
