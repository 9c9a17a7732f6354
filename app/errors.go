package app

import (
	"cosmossdk.io/errors"
)

// Host sentinel errors
var (
	ErrNoRoute       = errors.Register("host", 2, "no route for function identifier")
	ErrNoHandler     = errors.Register("host", 3, "routed module does not implement the entry point")
	ErrModuleExists  = errors.Register("host", 4, "module already deployed at address")
	ErrInvalidModule = errors.Register("host", 5, "module has no address")
	ErrInvokeAborted = errors.Register("host", 6, "invocation aborted")
)
