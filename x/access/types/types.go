package types

import (
	"cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/shared/regions"
)

const (
	// ModuleName is the access module's name and error codespace.
	ModuleName = "access"

	// RegionTag derives the module's storage region.
	RegionTag = "asle.storage.access"
)

// Region is the module's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)

// Roles the host's engines consult through IsAuthorized.
const (
	RolePoolCreator     = "pool_creator"
	RoleFeeManager      = "fee_manager"
	RoleSecurityCouncil = "security_council"
	RolePriceFeeder     = "price_feeder"
	RolePauser          = "pauser"
)

// KnownRoles is the closed set of grantable roles.
var KnownRoles = []string{
	RolePoolCreator,
	RoleFeeManager,
	RoleSecurityCouncil,
	RolePriceFeeder,
	RolePauser,
}

// Access sentinel errors
var (
	ErrUnauthorized   = errors.Register(ModuleName, 2, "caller is not the access authority")
	ErrUnknownRole    = errors.Register(ModuleName, 3, "unknown role")
	ErrAlreadyGranted = errors.Register(ModuleName, 4, "role already granted")
	ErrNotGranted     = errors.Register(ModuleName, 5, "role not granted")
	ErrZeroAddress    = errors.Register(ModuleName, 6, "address must not be empty")
	ErrInvalidGenesis = errors.Register(ModuleName, 7, "invalid access genesis state")
	ErrInvalidPayload = errors.Register(ModuleName, 8, "malformed call payload")
)

// Access event types and attribute keys
const (
	EventTypeRoleGranted    = "role_granted"
	EventTypeRoleRevoked    = "role_revoked"
	EventTypeAccountModeSet = "account_mode_set"

	AttributeKeyRole    = "role"
	AttributeKeyAccount = "account"
	AttributeKeyMode    = "mode"
	AttributeKeyGranter = "granter"
)

// ValidRole reports whether role is in the closed role set.
func ValidRole(role string) bool {
	for _, known := range KnownRoles {
		if role == known {
			return true
		}
	}
	return false
}

// RoleGrant is one (role, account) pair, used in genesis.
type RoleGrant struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

// AccountMode is one account's compliance bitmask, used in genesis.
type AccountMode struct {
	Account string `json:"account"`
	Mask    uint32 `json:"mask"`
}

// GenesisState seeds initial grants and compliance masks.
type GenesisState struct {
	Grants []RoleGrant   `json:"grants,omitempty"`
	Modes  []AccountMode `json:"modes,omitempty"`
}

// DefaultGenesis returns a genesis with no grants.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate checks the genesis state.
func (gs GenesisState) Validate() error {
	type grantKey struct{ role, account string }
	seen := make(map[grantKey]struct{}, len(gs.Grants))
	for _, grant := range gs.Grants {
		if !ValidRole(grant.Role) {
			return ErrInvalidGenesis.Wrapf("unknown role %q", grant.Role)
		}
		if _, err := sdk.AccAddressFromBech32(grant.Account); err != nil {
			return ErrInvalidGenesis.Wrapf("grant account: %v", err)
		}
		key := grantKey{grant.Role, grant.Account}
		if _, ok := seen[key]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate grant %s to %s", grant.Role, grant.Account)
		}
		seen[key] = struct{}{}
	}
	modes := make(map[string]struct{}, len(gs.Modes))
	for _, mode := range gs.Modes {
		if _, err := sdk.AccAddressFromBech32(mode.Account); err != nil {
			return ErrInvalidGenesis.Wrapf("mode account: %v", err)
		}
		if _, ok := modes[mode.Account]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate mode for %s", mode.Account)
		}
		modes[mode.Account] = struct{}{}
	}
	return nil
}
