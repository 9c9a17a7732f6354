package keeper

import (
	"encoding/binary"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/asle-chain/asle/x/access/types"
)

// Store key prefixes inside the access region.
var (
	GrantKeyPrefix = []byte{0x01} // role ++ 0x00 ++ account -> 1
	ModeKeyPrefix  = []byte{0x02} // account -> uint32 bitmask
)

// GrantKey returns the grant record key for a (role, account) pair.
func GrantKey(role string, account sdk.AccAddress) []byte {
	key := append(GrantKeyPrefix, role...)
	key = append(key, 0x00)
	return append(key, address.MustLengthPrefix(account)...)
}

// ModeKey returns the compliance mask key for an account.
func ModeKey(account sdk.AccAddress) []byte {
	return append(ModeKeyPrefix, address.MustLengthPrefix(account)...)
}

// Keeper answers the authorization and compliance hooks the engines
// consult: role grants behind IsAuthorized and per-account compliance
// bitmasks behind CanAccess. Grants are authority-gated bookkeeping, not
// policy: the engines decide when to ask, the keeper only answers.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string
}

// NewKeeper creates an access Keeper. storeKey is the host's shared store;
// the keeper works inside the access region of it.
func NewKeeper(storeKey storetypes.StoreKey, authority string) Keeper {
	if authority == "" {
		panic("access keeper requires an authority address")
	}
	return Keeper{storeKey: storeKey, authority: authority}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the account allowed to grant and revoke.
func (k Keeper) GetAuthority() string {
	return k.authority
}

func (k Keeper) regionStore(ctx sdk.Context) storetypes.KVStore {
	return types.Region.Open(ctx.KVStore(k.storeKey))
}

// GrantRole grants role to account. Only the authority may grant; granting
// an already-held role fails so accidental double grants surface.
func (k Keeper) GrantRole(ctx sdk.Context, caller sdk.AccAddress, role string, account sdk.AccAddress) error {
	if err := k.assertAuthority(caller); err != nil {
		return err
	}
	if !types.ValidRole(role) {
		return types.ErrUnknownRole.Wrap(role)
	}
	if account.Empty() {
		return types.ErrZeroAddress.Wrap("grantee")
	}
	if k.IsAuthorized(ctx, role, account) {
		return types.ErrAlreadyGranted.Wrapf("%s already holds %s", account, role)
	}

	k.regionStore(ctx).Set(GrantKey(role, account), []byte{1})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRoleGranted,
			sdk.NewAttribute(types.AttributeKeyRole, role),
			sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
			sdk.NewAttribute(types.AttributeKeyGranter, caller.String()),
		),
	)
	k.Logger(ctx).Info("role granted", "role", role, "account", account.String())
	return nil
}

// RevokeRole revokes role from account. Only the authority may revoke.
func (k Keeper) RevokeRole(ctx sdk.Context, caller sdk.AccAddress, role string, account sdk.AccAddress) error {
	if err := k.assertAuthority(caller); err != nil {
		return err
	}
	if !types.ValidRole(role) {
		return types.ErrUnknownRole.Wrap(role)
	}
	if !k.IsAuthorized(ctx, role, account) {
		return types.ErrNotGranted.Wrapf("%s does not hold %s", account, role)
	}

	k.regionStore(ctx).Delete(GrantKey(role, account))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRoleRevoked,
			sdk.NewAttribute(types.AttributeKeyRole, role),
			sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
			sdk.NewAttribute(types.AttributeKeyGranter, caller.String()),
		),
	)
	k.Logger(ctx).Info("role revoked", "role", role, "account", account.String())
	return nil
}

// IsAuthorized reports whether account holds role. The authority itself
// holds every role implicitly.
func (k Keeper) IsAuthorized(ctx sdk.Context, role string, account sdk.AccAddress) bool {
	if account.String() == k.authority {
		return true
	}
	return k.regionStore(ctx).Has(GrantKey(role, account))
}

// SetAccountMode sets account's compliance bitmask. Only the authority may
// set; a zero mask clears the record.
func (k Keeper) SetAccountMode(ctx sdk.Context, caller sdk.AccAddress, account sdk.AccAddress, mask uint32) error {
	if err := k.assertAuthority(caller); err != nil {
		return err
	}
	if account.Empty() {
		return types.ErrZeroAddress.Wrap("account")
	}

	store := k.regionStore(ctx)
	if mask == 0 {
		store.Delete(ModeKey(account))
	} else {
		bz := make([]byte, 4)
		binary.BigEndian.PutUint32(bz, mask)
		store.Set(ModeKey(account), bz)
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAccountModeSet,
			sdk.NewAttribute(types.AttributeKeyAccount, account.String()),
			sdk.NewAttribute(types.AttributeKeyMode, fmt.Sprintf("%d", mask)),
		),
	)
	return nil
}

// GetAccountMode returns account's compliance bitmask, zero when unset.
func (k Keeper) GetAccountMode(ctx sdk.Context, account sdk.AccAddress) uint32 {
	bz := k.regionStore(ctx).Get(ModeKey(account))
	if len(bz) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(bz)
}

// CanAccess reports whether account satisfies requiredMode: a zero mode is
// open access, otherwise the account's mask must cover every required bit.
func (k Keeper) CanAccess(ctx sdk.Context, account sdk.AccAddress, requiredMode uint32) bool {
	if requiredMode == 0 {
		return true
	}
	return k.GetAccountMode(ctx, account)&requiredMode == requiredMode
}

func (k Keeper) assertAuthority(caller sdk.AccAddress) error {
	if caller.String() != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, caller)
	}
	return nil
}

// InitGenesis seeds initial grants and compliance masks.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	store := k.regionStore(ctx)
	for _, grant := range gs.Grants {
		account, err := sdk.AccAddressFromBech32(grant.Account)
		if err != nil {
			return types.ErrInvalidGenesis.Wrapf("grant account: %v", err)
		}
		store.Set(GrantKey(grant.Role, account), []byte{1})
	}
	for _, mode := range gs.Modes {
		account, err := sdk.AccAddressFromBech32(mode.Account)
		if err != nil {
			return types.ErrInvalidGenesis.Wrapf("mode account: %v", err)
		}
		bz := make([]byte, 4)
		binary.BigEndian.PutUint32(bz, mode.Mask)
		store.Set(ModeKey(account), bz)
	}
	return nil
}

// ExportGenesis captures every grant and compliance mask.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	gs := &types.GenesisState{}
	store := k.regionStore(ctx)

	it := storetypes.KVStorePrefixIterator(store, GrantKeyPrefix)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		key := it.Key()[len(GrantKeyPrefix):]
		for i, b := range key {
			if b == 0x00 {
				role := string(key[:i])
				account := sdk.AccAddress(key[i+2:]) // skip separator and length byte
				gs.Grants = append(gs.Grants, types.RoleGrant{Role: role, Account: account.String()})
				break
			}
		}
	}

	modeIt := storetypes.KVStorePrefixIterator(store, ModeKeyPrefix)
	defer modeIt.Close()
	for ; modeIt.Valid(); modeIt.Next() {
		account := sdk.AccAddress(modeIt.Key()[len(ModeKeyPrefix)+1:])
		gs.Modes = append(gs.Modes, types.AccountMode{
			Account: account.String(),
			Mask:    binary.BigEndian.Uint32(modeIt.Value()),
		})
	}
	return gs
}
