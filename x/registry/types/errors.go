package types

import (
	"cosmossdk.io/errors"
)

// Registry sentinel errors
var (
	ErrZeroAddress           = errors.Register(ModuleName, 2, "address must not be empty")
	ErrEmptyFunctionIDs      = errors.Register(ModuleName, 3, "operation carries no function identifiers")
	ErrRouteExists           = errors.Register(ModuleName, 4, "function identifier already routed")
	ErrRouteNotFound         = errors.Register(ModuleName, 5, "function identifier not routed")
	ErrModuleHasNoCode       = errors.Register(ModuleName, 6, "no executable code at module address")
	ErrImmutableRoute        = errors.Register(ModuleName, 7, "route is a permanent registry entry point")
	ErrSameModuleReplace     = errors.Register(ModuleName, 8, "module already owns the identifier")
	ErrInvalidCutAction      = errors.Register(ModuleName, 9, "unknown cut action")
	ErrRemoveTargetNotNull   = errors.Register(ModuleName, 10, "remove operations must carry the null module address")
	ErrUnauthorized          = errors.Register(ModuleName, 11, "caller is not the registry owner")
	ErrAlreadyInitialized    = errors.Register(ModuleName, 12, "registry ownership already initialized")
	ErrNotInitialized        = errors.Register(ModuleName, 13, "registry ownership not initialized")
	ErrUnexpectedInitPayload = errors.Register(ModuleName, 14, "initializer payload present without an initializer")
	ErrEmptyInitPayload      = errors.Register(ModuleName, 15, "initializer requires a non-empty payload")
	ErrInitializerFailed     = errors.Register(ModuleName, 16, "cut initializer failed")
	ErrRegistryFull          = errors.Register(ModuleName, 17, "position index exhausted")
	ErrCorruptState          = errors.Register(ModuleName, 18, "registry state corrupted")
	ErrInvalidGenesis        = errors.Register(ModuleName, 19, "invalid registry genesis state")
	ErrInvalidPayload        = errors.Register(ModuleName, 20, "malformed call payload")
)
