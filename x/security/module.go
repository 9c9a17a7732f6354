// Package security exposes the pause switch and circuit breakers as a
// routable module.
package security

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	registrytypes "github.com/asle-chain/asle/x/registry/types"
	"github.com/asle-chain/asle/x/security/keeper"
	"github.com/asle-chain/asle/x/security/types"
)

// Entry point signatures of the security module.
const (
	SigPause        = "pause(reason)"
	SigUnpause      = "unpause()"
	SigIsPaused     = "isPaused()"
	SigSetBreaker   = "setBreaker(poolId,maxDeviationBps,cooldownSeconds,referencePrice)"
	SigResetBreaker = "resetBreaker(poolId,referencePrice)"
)

// Function identifiers of the module's entry points.
var (
	FIDPause        = registrytypes.FunctionIDFromSignature(SigPause)
	FIDUnpause      = registrytypes.FunctionIDFromSignature(SigUnpause)
	FIDIsPaused     = registrytypes.FunctionIDFromSignature(SigIsPaused)
	FIDSetBreaker   = registrytypes.FunctionIDFromSignature(SigSetBreaker)
	FIDResetBreaker = registrytypes.FunctionIDFromSignature(SigResetBreaker)
)

// ModuleAddress is the module's deployed address in the host.
var ModuleAddress = authtypes.NewModuleAddress(types.ModuleName)

// RoutableFunctionIDs lists the identifiers routed to the module.
func RoutableFunctionIDs() []registrytypes.FunctionID {
	return []registrytypes.FunctionID{
		FIDPause,
		FIDUnpause,
		FIDIsPaused,
		FIDSetBreaker,
		FIDResetBreaker,
	}
}

// Wire forms of the module's calls.

type PauseRequest struct {
	Reason string `json:"reason"`
}

type PauseResponse struct {
	Paused bool   `json:"paused"`
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

type SetBreakerRequest struct {
	PoolID          uint64         `json:"pool_id"`
	MaxDeviationBps uint32         `json:"max_deviation_bps"`
	CooldownSeconds uint64         `json:"cooldown_seconds"`
	ReferencePrice  math.LegacyDec `json:"reference_price"`
}

type ResetBreakerRequest struct {
	PoolID         uint64         `json:"pool_id"`
	ReferencePrice math.LegacyDec `json:"reference_price"`
}

// SecurityModule implements registrytypes.Module over the security keeper.
type SecurityModule struct {
	k keeper.Keeper
}

var _ registrytypes.Module = SecurityModule{}

// NewSecurityModule wraps the keeper as a deployable module.
func NewSecurityModule(k keeper.Keeper) SecurityModule {
	return SecurityModule{k: k}
}

// Address returns the module's deployed address.
func (m SecurityModule) Address() sdk.AccAddress {
	return ModuleAddress
}

// Handler dispatches the module's entry points.
func (m SecurityModule) Handler(id registrytypes.FunctionID) (registrytypes.Handler, bool) {
	switch id {
	case FIDPause:
		return m.handlePause, true
	case FIDUnpause:
		return m.handleUnpause, true
	case FIDIsPaused:
		return m.handleIsPaused, true
	case FIDSetBreaker:
		return m.handleSetBreaker, true
	case FIDResetBreaker:
		return m.handleResetBreaker, true
	default:
		return nil, false
	}
}

func (m SecurityModule) handlePause(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req PauseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.Pause(ctx, caller, req.Reason); err != nil {
		return nil, err
	}
	info := m.k.PauseInfo(ctx)
	return json.Marshal(PauseResponse{Paused: info.Paused, Reason: info.Reason, Actor: info.Actor})
}

func (m SecurityModule) handleUnpause(ctx sdk.Context, caller sdk.AccAddress, _ []byte) ([]byte, error) {
	if err := m.k.Unpause(ctx, caller); err != nil {
		return nil, err
	}
	return json.Marshal(PauseResponse{Paused: false})
}

func (m SecurityModule) handleIsPaused(ctx sdk.Context, _ sdk.AccAddress, _ []byte) ([]byte, error) {
	info := m.k.PauseInfo(ctx)
	return json.Marshal(PauseResponse{Paused: info.Paused, Reason: info.Reason, Actor: info.Actor})
}

func (m SecurityModule) handleSetBreaker(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req SetBreakerRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	config := types.BreakerConfig{
		MaxDeviationBps: req.MaxDeviationBps,
		CooldownSeconds: req.CooldownSeconds,
	}
	if err := m.k.SetBreaker(ctx, caller, req.PoolID, config, req.ReferencePrice); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func (m SecurityModule) handleResetBreaker(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req ResetBreakerRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.ResetBreaker(ctx, caller, req.PoolID, req.ReferencePrice); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}
