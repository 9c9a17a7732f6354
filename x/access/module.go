// Package access exposes role and compliance bookkeeping as a routable
// module.
package access

import (
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/asle-chain/asle/x/access/keeper"
	"github.com/asle-chain/asle/x/access/types"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
)

// Entry point signatures of the access module.
const (
	SigGrantRole      = "grantRole(role,account)"
	SigRevokeRole     = "revokeRole(role,account)"
	SigIsAuthorized   = "isAuthorized(role,account)"
	SigSetAccountMode = "setAccountMode(account,mask)"
	SigCanAccess      = "canAccess(account,requiredMode)"
)

// Function identifiers of the module's entry points.
var (
	FIDGrantRole      = registrytypes.FunctionIDFromSignature(SigGrantRole)
	FIDRevokeRole     = registrytypes.FunctionIDFromSignature(SigRevokeRole)
	FIDIsAuthorized   = registrytypes.FunctionIDFromSignature(SigIsAuthorized)
	FIDSetAccountMode = registrytypes.FunctionIDFromSignature(SigSetAccountMode)
	FIDCanAccess      = registrytypes.FunctionIDFromSignature(SigCanAccess)
)

// ModuleAddress is the module's deployed address in the host.
var ModuleAddress = authtypes.NewModuleAddress(types.ModuleName)

// RoutableFunctionIDs lists the identifiers routed to the module.
func RoutableFunctionIDs() []registrytypes.FunctionID {
	return []registrytypes.FunctionID{
		FIDGrantRole,
		FIDRevokeRole,
		FIDIsAuthorized,
		FIDSetAccountMode,
		FIDCanAccess,
	}
}

// Wire forms of the module's calls.

type RoleRequest struct {
	Role    string         `json:"role"`
	Account sdk.AccAddress `json:"account"`
}

type AuthorizedResponse struct {
	Authorized bool `json:"authorized"`
}

type SetAccountModeRequest struct {
	Account sdk.AccAddress `json:"account"`
	Mask    uint32         `json:"mask"`
}

type CanAccessRequest struct {
	Account      sdk.AccAddress `json:"account"`
	RequiredMode uint32         `json:"required_mode"`
}

type CanAccessResponse struct {
	Allowed bool `json:"allowed"`
}

// AccessModule implements registrytypes.Module over the access keeper.
type AccessModule struct {
	k keeper.Keeper
}

var _ registrytypes.Module = AccessModule{}

// NewAccessModule wraps the keeper as a deployable module.
func NewAccessModule(k keeper.Keeper) AccessModule {
	return AccessModule{k: k}
}

// Address returns the module's deployed address.
func (m AccessModule) Address() sdk.AccAddress {
	return ModuleAddress
}

// Handler dispatches the module's entry points.
func (m AccessModule) Handler(id registrytypes.FunctionID) (registrytypes.Handler, bool) {
	switch id {
	case FIDGrantRole:
		return m.handleGrantRole, true
	case FIDRevokeRole:
		return m.handleRevokeRole, true
	case FIDIsAuthorized:
		return m.handleIsAuthorized, true
	case FIDSetAccountMode:
		return m.handleSetAccountMode, true
	case FIDCanAccess:
		return m.handleCanAccess, true
	default:
		return nil, false
	}
}

func (m AccessModule) handleGrantRole(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req RoleRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.GrantRole(ctx, caller, req.Role, req.Account); err != nil {
		return nil, err
	}
	return json.Marshal(AuthorizedResponse{Authorized: true})
}

func (m AccessModule) handleRevokeRole(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req RoleRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.RevokeRole(ctx, caller, req.Role, req.Account); err != nil {
		return nil, err
	}
	return json.Marshal(AuthorizedResponse{Authorized: false})
}

func (m AccessModule) handleIsAuthorized(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req RoleRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	return json.Marshal(AuthorizedResponse{
		Authorized: m.k.IsAuthorized(ctx, req.Role, req.Account),
	})
}

func (m AccessModule) handleSetAccountMode(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req SetAccountModeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.SetAccountMode(ctx, caller, req.Account, req.Mask); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func (m AccessModule) handleCanAccess(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req CanAccessRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	return json.Marshal(CanAccessResponse{
		Allowed: m.k.CanAccess(ctx, req.Account, req.RequiredMode),
	})
}
