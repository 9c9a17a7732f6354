// Package pmm exposes the pool engine as a routable module: JSON wire
// forms for each entry point, decoded into keeper calls by the dispatch
// host.
package pmm

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/asle-chain/asle/x/pmm/keeper"
	"github.com/asle-chain/asle/x/pmm/types"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
)

// Entry point signatures of the pool engine.
const (
	SigInitializeEngine = "initializeEngine(params)"
	SigCreatePool       = "createPool(baseDenom,quoteDenom,baseReserve,quoteReserve,vBase,vQuote,k,oraclePrice)"
	SigAddLiquidity     = "addLiquidity(poolId,baseAmount,quoteAmount)"
	SigRemoveLiquidity  = "removeLiquidity(poolId,shares)"
	SigSwap             = "swap(poolId,denomIn,amountIn,minAmountOut)"
	SigGetPrice         = "getPrice(poolId)"
	SigGetQuote         = "getQuote(poolId,denomIn,amountIn)"
	SigSyncOraclePrice  = "syncOraclePrice(poolId)"
	SigClaimPoolFees    = "claimPoolFees(poolId)"
	SigWithdrawFees     = "withdrawProtocolFees(denom,to)"
	SigDeactivatePool   = "deactivatePool(poolId)"
)

// Function identifiers of the pool engine's entry points.
var (
	FIDInitializeEngine = registrytypes.FunctionIDFromSignature(SigInitializeEngine)
	FIDCreatePool       = registrytypes.FunctionIDFromSignature(SigCreatePool)
	FIDAddLiquidity     = registrytypes.FunctionIDFromSignature(SigAddLiquidity)
	FIDRemoveLiquidity  = registrytypes.FunctionIDFromSignature(SigRemoveLiquidity)
	FIDSwap             = registrytypes.FunctionIDFromSignature(SigSwap)
	FIDGetPrice         = registrytypes.FunctionIDFromSignature(SigGetPrice)
	FIDGetQuote         = registrytypes.FunctionIDFromSignature(SigGetQuote)
	FIDSyncOraclePrice  = registrytypes.FunctionIDFromSignature(SigSyncOraclePrice)
	FIDClaimPoolFees    = registrytypes.FunctionIDFromSignature(SigClaimPoolFees)
	FIDWithdrawFees     = registrytypes.FunctionIDFromSignature(SigWithdrawFees)
	FIDDeactivatePool   = registrytypes.FunctionIDFromSignature(SigDeactivatePool)
)

// ModuleAddress is the engine's deployed address in the host.
var ModuleAddress = authtypes.NewModuleAddress(types.ModuleName)

// RoutableFunctionIDs lists the identifiers routed to the engine. The
// initializer entry point is deliberately absent: it runs through the cut
// protocol, not the dispatch table.
func RoutableFunctionIDs() []registrytypes.FunctionID {
	return []registrytypes.FunctionID{
		FIDCreatePool,
		FIDAddLiquidity,
		FIDRemoveLiquidity,
		FIDSwap,
		FIDGetPrice,
		FIDGetQuote,
		FIDSyncOraclePrice,
		FIDClaimPoolFees,
		FIDWithdrawFees,
		FIDDeactivatePool,
	}
}

// Wire forms of the engine's calls.

type InitializeEngineRequest struct {
	Params types.Params `json:"params"`
}

type CreatePoolRequest struct {
	BaseDenom    string         `json:"base_denom"`
	QuoteDenom   string         `json:"quote_denom"`
	BaseReserve  math.Int       `json:"base_reserve"`
	QuoteReserve math.Int       `json:"quote_reserve"`
	VirtualBase  math.Int       `json:"virtual_base"`
	VirtualQuote math.Int       `json:"virtual_quote"`
	K            math.LegacyDec `json:"k"`
	OraclePrice  math.LegacyDec `json:"oracle_price"`
}

type CreatePoolResponse struct {
	PoolID uint64 `json:"pool_id"`
}

type AddLiquidityRequest struct {
	PoolID      uint64   `json:"pool_id"`
	BaseAmount  math.Int `json:"base_amount"`
	QuoteAmount math.Int `json:"quote_amount"`
}

type AddLiquidityResponse struct {
	Shares math.Int `json:"shares"`
}

type RemoveLiquidityRequest struct {
	PoolID uint64   `json:"pool_id"`
	Shares math.Int `json:"shares"`
}

type RemoveLiquidityResponse struct {
	BaseAmount  math.Int `json:"base_amount"`
	QuoteAmount math.Int `json:"quote_amount"`
}

type SwapRequest struct {
	PoolID       uint64   `json:"pool_id"`
	DenomIn      string   `json:"denom_in"`
	AmountIn     math.Int `json:"amount_in"`
	MinAmountOut math.Int `json:"min_amount_out"`
}

type SwapResponse struct {
	AmountOut math.Int `json:"amount_out"`
}

type PoolIDRequest struct {
	PoolID uint64 `json:"pool_id"`
}

type GetPriceResponse struct {
	Price math.LegacyDec `json:"price"`
}

type GetQuoteRequest struct {
	PoolID   uint64   `json:"pool_id"`
	DenomIn  string   `json:"denom_in"`
	AmountIn math.Int `json:"amount_in"`
}

type GetQuoteResponse struct {
	AmountOut math.Int       `json:"amount_out"`
	ExecPrice math.LegacyDec `json:"exec_price"`
}

type ClaimPoolFeesResponse struct {
	Claimed map[string]math.Int `json:"claimed"`
}

type WithdrawFeesRequest struct {
	Denom string         `json:"denom"`
	To    sdk.AccAddress `json:"to"`
}

type WithdrawFeesResponse struct {
	Amount math.Int `json:"amount"`
}

// EngineModule implements registrytypes.Module over the pool engine keeper.
type EngineModule struct {
	k keeper.Keeper
}

var _ registrytypes.Module = EngineModule{}

// NewEngineModule wraps the keeper as a deployable module.
func NewEngineModule(k keeper.Keeper) EngineModule {
	return EngineModule{k: k}
}

// Address returns the engine's deployed address.
func (m EngineModule) Address() sdk.AccAddress {
	return ModuleAddress
}

// Handler dispatches the engine's entry points.
func (m EngineModule) Handler(id registrytypes.FunctionID) (registrytypes.Handler, bool) {
	switch id {
	case FIDInitializeEngine:
		return m.handleInitializeEngine, true
	case FIDCreatePool:
		return m.handleCreatePool, true
	case FIDAddLiquidity:
		return m.handleAddLiquidity, true
	case FIDRemoveLiquidity:
		return m.handleRemoveLiquidity, true
	case FIDSwap:
		return m.handleSwap, true
	case FIDGetPrice:
		return m.handleGetPrice, true
	case FIDGetQuote:
		return m.handleGetQuote, true
	case FIDSyncOraclePrice:
		return m.handleSyncOraclePrice, true
	case FIDClaimPoolFees:
		return m.handleClaimPoolFees, true
	case FIDWithdrawFees:
		return m.handleWithdrawFees, true
	case FIDDeactivatePool:
		return m.handleDeactivatePool, true
	default:
		return nil, false
	}
}

// InitializerPayload builds the cut-initializer payload that seeds the
// engine: the initializer entry point's identifier followed by its JSON
// arguments.
func InitializerPayload(params types.Params) ([]byte, error) {
	args, err := json.Marshal(InitializeEngineRequest{Params: params})
	if err != nil {
		return nil, err
	}
	return append(FIDInitializeEngine[:], args...), nil
}

func (m EngineModule) handleInitializeEngine(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req InitializeEngineRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.SetParams(ctx, req.Params); err != nil {
		return nil, err
	}
	return json.Marshal(req.Params)
}

func (m EngineModule) handleCreatePool(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req CreatePoolRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	poolID, err := m.k.CreatePool(ctx, caller,
		req.BaseDenom, req.QuoteDenom,
		req.BaseReserve, req.QuoteReserve,
		req.VirtualBase, req.VirtualQuote,
		req.K, req.OraclePrice,
	)
	if err != nil {
		return nil, err
	}
	return json.Marshal(CreatePoolResponse{PoolID: poolID})
}

func (m EngineModule) handleAddLiquidity(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req AddLiquidityRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	shares, err := m.k.AddLiquidity(ctx, caller, req.PoolID, req.BaseAmount, req.QuoteAmount)
	if err != nil {
		return nil, err
	}
	return json.Marshal(AddLiquidityResponse{Shares: shares})
}

func (m EngineModule) handleRemoveLiquidity(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req RemoveLiquidityRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	base, quote, err := m.k.RemoveLiquidity(ctx, caller, req.PoolID, req.Shares)
	if err != nil {
		return nil, err
	}
	return json.Marshal(RemoveLiquidityResponse{BaseAmount: base, QuoteAmount: quote})
}

func (m EngineModule) handleSwap(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req SwapRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	amountOut, err := m.k.Swap(ctx, caller, req.PoolID, req.DenomIn, req.AmountIn, req.MinAmountOut)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SwapResponse{AmountOut: amountOut})
}

func (m EngineModule) handleGetPrice(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req PoolIDRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	price, err := m.k.GetPrice(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(GetPriceResponse{Price: price})
}

func (m EngineModule) handleGetQuote(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req GetQuoteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	amountOut, execPrice, err := m.k.GetQuote(ctx, req.PoolID, req.DenomIn, req.AmountIn)
	if err != nil {
		return nil, err
	}
	return json.Marshal(GetQuoteResponse{AmountOut: amountOut, ExecPrice: execPrice})
}

func (m EngineModule) handleSyncOraclePrice(ctx sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
	var req PoolIDRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.SyncOraclePrice(ctx, req.PoolID); err != nil {
		return nil, err
	}
	price, err := m.k.GetPrice(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(GetPriceResponse{Price: price})
}

func (m EngineModule) handleClaimPoolFees(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req PoolIDRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	claimed, err := m.k.ClaimPoolFees(ctx, caller, req.PoolID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ClaimPoolFeesResponse{Claimed: claimed})
}

func (m EngineModule) handleWithdrawFees(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req WithdrawFeesRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	amount, err := m.k.WithdrawProtocolFees(ctx, caller, req.Denom, req.To)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WithdrawFeesResponse{Amount: amount})
}

func (m EngineModule) handleDeactivatePool(ctx sdk.Context, caller sdk.AccAddress, payload []byte) ([]byte, error) {
	var req PoolIDRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, types.ErrInvalidPayload.Wrap(err.Error())
	}
	if err := m.k.DeactivatePool(ctx, caller, req.PoolID); err != nil {
		return nil, err
	}
	return json.Marshal(PoolIDRequest{PoolID: req.PoolID})
}
