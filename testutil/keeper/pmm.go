package keeper

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	accesskeeper "github.com/asle-chain/asle/x/access/keeper"
	oraclekeeper "github.com/asle-chain/asle/x/oracle/keeper"
	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
	pmmtypes "github.com/asle-chain/asle/x/pmm/types"
	securitykeeper "github.com/asle-chain/asle/x/security/keeper"
)

// StubCollaborators replaces the access, security, and oracle keepers
// with fixed answers, so engine tests can flip a single switch instead
// of staging collaborator state.
type StubCollaborators struct {
	Roles    map[string]bool // role -> authorized, for every caller
	Open     bool            // CanAccess for every caller and mode
	Paused   bool
	Breaker  bool // CheckCircuitBreaker verdict
	Prices   map[string]math.LegacyDec
	NoPrices bool
}

// NewStubCollaborators answers yes to everything and serves no prices.
func NewStubCollaborators() *StubCollaborators {
	return &StubCollaborators{
		Roles:   make(map[string]bool),
		Open:    true,
		Breaker: true,
		Prices:  make(map[string]math.LegacyDec),
	}
}

// SetPrice stores a reference price for the base/quote pair.
func (s *StubCollaborators) SetPrice(base, quote string, price math.LegacyDec) {
	s.Prices[base+"/"+quote] = price
}

func (s *StubCollaborators) IsAuthorized(_ sdk.Context, role string, _ sdk.AccAddress) bool {
	granted, known := s.Roles[role]
	if !known {
		return true
	}
	return granted
}

func (s *StubCollaborators) CanAccess(_ sdk.Context, _ sdk.AccAddress, requiredMode uint32) bool {
	return requiredMode == 0 || s.Open
}

func (s *StubCollaborators) IsPaused(_ sdk.Context) bool {
	return s.Paused
}

func (s *StubCollaborators) CheckCircuitBreaker(_ sdk.Context, _ uint64, _ math.LegacyDec) bool {
	return s.Breaker
}

func (s *StubCollaborators) GetReferencePrice(_ sdk.Context, base, quote string) (math.LegacyDec, bool) {
	if s.NoPrices {
		return math.LegacyDec{}, false
	}
	price, ok := s.Prices[base+"/"+quote]
	return price, ok
}

// PMMKeeper builds a pool engine keeper over a fresh host store with
// stubbed collaborators and default parameters.
func PMMKeeper(t testing.TB) (pmmkeeper.Keeper, *StubCollaborators, sdk.Context) {
	storeKey, ctx := HostContext(t)
	stubs := NewStubCollaborators()

	k := pmmkeeper.NewKeeper(storeKey, Authority(), stubs, stubs, stubs)
	require.NoError(t, k.SetParams(ctx, pmmtypes.DefaultParams()))
	return k, stubs, ctx
}

// AccessKeeper builds an access keeper over a fresh host store.
func AccessKeeper(t testing.TB) (accesskeeper.Keeper, sdk.Context) {
	storeKey, ctx := HostContext(t)
	return accesskeeper.NewKeeper(storeKey, Authority()), ctx
}

// OracleKeeper builds an oracle keeper over a fresh host store.
func OracleKeeper(t testing.TB) (oraclekeeper.Keeper, sdk.Context) {
	storeKey, ctx := HostContext(t)
	return oraclekeeper.NewKeeper(storeKey, Authority()), ctx
}

// SecurityKeeper builds a security keeper wired to a real access keeper
// over the same host store.
func SecurityKeeper(t testing.TB) (securitykeeper.Keeper, accesskeeper.Keeper, sdk.Context) {
	storeKey, ctx := HostContext(t)
	access := accesskeeper.NewKeeper(storeKey, Authority())
	return securitykeeper.NewKeeper(storeKey, Authority(), access), access, ctx
}
