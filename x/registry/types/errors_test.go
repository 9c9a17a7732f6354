package types_test

import (
	"testing"

	"cosmossdk.io/errors"
	"github.com/stretchr/testify/require"

	"github.com/asle-chain/asle/x/registry/types"
)

// Code 1 is reserved in every codespace for untyped internal errors, so
// sentinel registrations start at 2.
func TestSentinelCodesSkipReserved(t *testing.T) {
	sentinels := []*errors.Error{
		types.ErrZeroAddress,
		types.ErrEmptyFunctionIDs,
		types.ErrRouteExists,
		types.ErrRouteNotFound,
		types.ErrModuleHasNoCode,
		types.ErrImmutableRoute,
		types.ErrSameModuleReplace,
		types.ErrInvalidCutAction,
		types.ErrRemoveTargetNotNull,
		types.ErrUnauthorized,
		types.ErrAlreadyInitialized,
		types.ErrNotInitialized,
		types.ErrUnexpectedInitPayload,
		types.ErrEmptyInitPayload,
		types.ErrInitializerFailed,
		types.ErrRegistryFull,
		types.ErrCorruptState,
		types.ErrInvalidGenesis,
		types.ErrInvalidPayload,
	}

	seen := make(map[uint32]bool, len(sentinels))
	for _, sentinel := range sentinels {
		code := sentinel.ABCICode()
		require.GreaterOrEqual(t, code, uint32(2), sentinel.Error())
		require.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
	}
}
