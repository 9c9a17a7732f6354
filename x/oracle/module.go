// Package oracle exposes the reference price feed as a routable module.
package oracle

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/asle-chain/asle/x/oracle/keeper"
	"github.com/asle-chain/asle/x/oracle/types"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
)

// Entry point signatures of the price feed.
const (
	SigSetPrice          = "setPrice(base,quote,price)"
	SigGetReferencePrice = "getReferencePrice(base,quote)"
)

// Function identifiers of the feed's entry points.
var (
	FIDSetPrice          = registrytypes.FunctionIDFromSignature(SigSetPrice)
	FIDGetReferencePrice = registrytypes.FunctionIDFromSignature(SigGetReferencePrice)
)

// ModuleAddress is the feed's deployed address in the host.
var ModuleAddress = authtypes.NewModuleAddress(types.ModuleName)

// ErrInvalidPayload flags malformed call payloads.
var ErrInvalidPayload = errors.Register(types.ModuleName, 10, "malformed call payload")

// RoutableFunctionIDs lists the identifiers routed to the feed.
func RoutableFunctionIDs() []registrytypes.FunctionID {
	return []registrytypes.FunctionID{FIDSetPrice, FIDGetReferencePrice}
}

// Wire forms of the feed's calls.

type SetPriceRequest struct {
	Base  string         `json:"base"`
	Quote string         `json:"quote"`
	Price math.LegacyDec `json:"price"`
}

type GetReferencePriceRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type GetReferencePriceResponse struct {
	Price math.LegacyDec `json:"price,omitempty"`
	Fresh bool           `json:"fresh"`
}

// FeedModule implements registrytypes.Module over the feed keeper.
type FeedModule struct {
	k keeper.Keeper
}

var _ registrytypes.Module = FeedModule{}

// NewFeedModule wraps the keeper as a deployable module.
func NewFeedModule(k keeper.Keeper) FeedModule {
	return FeedModule{k: k}
}

// Address returns the feed's deployed address.
func (m FeedModule) Address() sdk.AccAddress {
	return ModuleAddress
}

// Handler dispatches the feed's entry points.
func (m FeedModule) Handler(id registrytypes.FunctionID) (registrytypes.Handler, bool) {
	switch id {
	case FIDSetPrice:
		return m.handleSetPrice, true
	case FIDGetReferencePrice:
		return m.handleGetReferencePrice, true
	default:
		return nil, false
	}
}

func (m FeedModule) handleSetPrice(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req SetPriceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.SetPrice(ctx, caller, req.Base, req.Quote, req.Price); err != nil {
		return nil, err
	}
	return json.Marshal(GetReferencePriceResponse{Price: req.Price, Fresh: true})
}

func (m FeedModule) handleGetReferencePrice(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req GetReferencePriceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, ErrInvalidPayload.Wrap(err.Error())
	}
	price, fresh := m.k.GetReferencePrice(ctx, req.Base, req.Quote)
	resp := GetReferencePriceResponse{Fresh: fresh}
	if fresh {
		resp.Price = price
	}
	return json.Marshal(resp)
}
