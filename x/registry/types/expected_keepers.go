package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Handler executes a routed entry point against the host's shared store.
// payload carries the call arguments (JSON for the built-in modules); the
// returned bytes are the call result.
type Handler func(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error)

// Module is an independently deployed unit of executable code implementing
// one or more entry points.
type Module interface {
	// Address is the module's stable address in the host.
	Address() sdk.AccAddress
	// Handler returns the entry point for id, or false when the module does
	// not implement it.
	Handler(id FunctionID) (Handler, bool)
}

// CodeResolver reports which addresses hold executable code. The registry
// probes it before routing identifiers to a module for the first time and
// before invoking a cut initializer, the same way a chain probes code size
// before delegating to an address.
type CodeResolver interface {
	HasCode(addr sdk.AccAddress) bool
	Module(addr sdk.AccAddress) (Module, bool)
}
