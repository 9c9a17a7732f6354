// Package registry exposes the dispatch registry's own entry points as a
// routable module: the identity "self" module whose routes are installed at
// genesis and can never be replaced or removed.
package registry

import (
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/asle-chain/asle/x/registry/keeper"
	"github.com/asle-chain/asle/x/registry/types"
)

// Entry point signatures of the self module.
const (
	SigApplyCut          = "applyCut(operations,initializer,payload)"
	SigTransferOwnership = "transferOwnership(newOwner)"
	SigOwner             = "owner()"
	SigResolve           = "resolve(functionId)"
	SigListModules       = "listModules()"
	SigListFunctionIDs   = "listFunctionIds(module)"
)

// Function identifiers of the self module's entry points.
var (
	FIDApplyCut          = types.FunctionIDFromSignature(SigApplyCut)
	FIDTransferOwnership = types.FunctionIDFromSignature(SigTransferOwnership)
	FIDOwner             = types.FunctionIDFromSignature(SigOwner)
	FIDResolve           = types.FunctionIDFromSignature(SigResolve)
	FIDListModules       = types.FunctionIDFromSignature(SigListModules)
	FIDListFunctionIDs   = types.FunctionIDFromSignature(SigListFunctionIDs)
)

// SelfFunctionIDs lists the identifiers installed as permanent routes.
func SelfFunctionIDs() []types.FunctionID {
	return []types.FunctionID{
		FIDApplyCut,
		FIDTransferOwnership,
		FIDOwner,
		FIDResolve,
		FIDListModules,
		FIDListFunctionIDs,
	}
}

// DefaultGenesis builds the registry genesis for owner with the full set of
// self routes.
func DefaultGenesis(owner sdk.AccAddress) types.GenesisState {
	return types.GenesisState{
		Owner:           owner.String(),
		SelfFunctionIDs: SelfFunctionIDs(),
	}
}

// Wire forms of the self module's calls.

type ApplyCutRequest struct {
	Operations  []types.CutOp  `json:"operations"`
	Initializer sdk.AccAddress `json:"initializer,omitempty"`
	Payload     []byte         `json:"payload,omitempty"`
}

type ApplyCutResponse struct {
	Operations int `json:"operations"`
}

type TransferOwnershipRequest struct {
	NewOwner sdk.AccAddress `json:"new_owner"`
}

type OwnerResponse struct {
	Owner       string `json:"owner"`
	Initialized bool   `json:"initialized"`
}

type ResolveRequest struct {
	FunctionID types.FunctionID `json:"function_id"`
}

type ResolveResponse struct {
	Module string `json:"module,omitempty"`
	Routed bool   `json:"routed"`
}

type ListModulesResponse struct {
	Modules []string `json:"modules"`
}

type ListFunctionIDsRequest struct {
	Module sdk.AccAddress `json:"module"`
}

type ListFunctionIDsResponse struct {
	FunctionIDs []types.FunctionID `json:"function_ids"`
}

// SelfModule implements types.Module over the registry keeper.
type SelfModule struct {
	k keeper.Keeper
}

var _ types.Module = SelfModule{}

// NewSelfModule wraps the keeper as the registry's identity module.
func NewSelfModule(k keeper.Keeper) SelfModule {
	return SelfModule{k: k}
}

// Address returns the registry's self address.
func (m SelfModule) Address() sdk.AccAddress {
	return m.k.SelfAddress()
}

// Handler dispatches the self module's entry points.
func (m SelfModule) Handler(id types.FunctionID) (types.Handler, bool) {
	switch id {
	case FIDApplyCut:
		return m.handleApplyCut, true
	case FIDTransferOwnership:
		return m.handleTransferOwnership, true
	case FIDOwner:
		return m.handleOwner, true
	case FIDResolve:
		return m.handleResolve, true
	case FIDListModules:
		return m.handleListModules, true
	case FIDListFunctionIDs:
		return m.handleListFunctionIDs, true
	default:
		return nil, false
	}
}

func (m SelfModule) handleApplyCut(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req ApplyCutRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.ApplyCut(ctx, caller, req.Operations, req.Initializer, req.Payload); err != nil {
		return nil, err
	}
	return json.Marshal(ApplyCutResponse{Operations: len(req.Operations)})
}

func (m SelfModule) handleTransferOwnership(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req TransferOwnershipRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.TransferOwnership(ctx, caller, req.NewOwner); err != nil {
		return nil, err
	}
	return json.Marshal(OwnerResponse{Owner: req.NewOwner.String(), Initialized: true})
}

func (m SelfModule) handleOwner(ctx sdk.Context, _ sdk.AccAddress, _ []byte) ([]byte, error) {
	owner, ok := m.k.Owner(ctx)
	resp := OwnerResponse{Initialized: ok}
	if ok {
		resp.Owner = owner.String()
	}
	return json.Marshal(resp)
}

func (m SelfModule) handleResolve(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req ResolveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	module, ok := m.k.Resolve(ctx, req.FunctionID)
	resp := ResolveResponse{Routed: ok}
	if ok {
		resp.Module = module.String()
	}
	return json.Marshal(resp)
}

func (m SelfModule) handleListModules(ctx sdk.Context, _ sdk.AccAddress, _ []byte) ([]byte, error) {
	modules := m.k.ListModules(ctx)
	resp := ListModulesResponse{Modules: make([]string, len(modules))}
	for i, module := range modules {
		resp.Modules[i] = module.String()
	}
	return json.Marshal(resp)
}

func (m SelfModule) handleListFunctionIDs(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req ListFunctionIDsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	return json.Marshal(ListFunctionIDsResponse{
		FunctionIDs: m.k.ListFunctionIDs(ctx, req.Module),
	})
}
