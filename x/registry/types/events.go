package types

// Registry event types
const (
	EventTypeRegistryInitialized  = "registry_initialized"
	EventTypeRoutesAdded          = "routes_added"
	EventTypeRoutesReplaced       = "routes_replaced"
	EventTypeRoutesRemoved        = "routes_removed"
	EventTypeCutApplied           = "cut_applied"
	EventTypeOwnershipTransferred = "ownership_transferred"
)

// Registry event attribute keys
const (
	AttributeKeyOwner         = "owner"
	AttributeKeyModule        = "module"
	AttributeKeyFunctionIDs   = "function_ids"
	AttributeKeyOperations    = "operations"
	AttributeKeyInitializer   = "initializer"
	AttributeKeyPreviousOwner = "previous_owner"
	AttributeKeyNewOwner      = "new_owner"
)
