package keeper_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	"github.com/asle-chain/asle/x/registry/types"
)

func TestInitializeOwnerOnce(t *testing.T) {
	k, _, ctx := keepertest.RegistryKeeper(t)

	_, ok := k.Owner(ctx)
	require.False(t, ok)

	first := keepertest.TestAddress(0x01)
	require.NoError(t, k.InitializeOwner(ctx, first))

	owner, ok := k.Owner(ctx)
	require.True(t, ok)
	require.Equal(t, first, owner)

	// The initialized flag flips exactly once; a second assignment fails
	// even for the same address.
	err := k.InitializeOwner(ctx, keepertest.TestAddress(0x02))
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)
	err = k.InitializeOwner(ctx, first)
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)
}

func TestInitializeOwnerRejectsNull(t *testing.T) {
	k, _, ctx := keepertest.RegistryKeeper(t)
	err := k.InitializeOwner(ctx, nil)
	require.ErrorIs(t, err, types.ErrZeroAddress)
}

func TestTransferOwnership(t *testing.T) {
	owner := keepertest.TestAddress(0x01)
	next := keepertest.TestAddress(0x02)
	k, _, ctx := keepertest.InitializedRegistryKeeper(t, owner)

	tests := []struct {
		name     string
		caller   sdk.AccAddress
		newOwner sdk.AccAddress
		wantErr  error
	}{
		{name: "stranger cannot transfer", caller: keepertest.TestAddress(0x99), newOwner: next, wantErr: types.ErrUnauthorized},
		{name: "null new owner", caller: owner, newOwner: nil, wantErr: types.ErrZeroAddress},
		{name: "owner transfers", caller: owner, newOwner: next},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := k.TransferOwnership(ctx, tc.caller, tc.newOwner)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	got, ok := k.Owner(ctx)
	require.True(t, ok)
	require.Equal(t, next.Bytes(), got.Bytes())

	// The old owner lost control.
	err := k.TransferOwnership(ctx, owner, owner)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.NoError(t, k.TransferOwnership(ctx, next, owner))
}
