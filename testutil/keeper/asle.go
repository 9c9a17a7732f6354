package keeper

import (
	"bytes"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/stretchr/testify/require"

	"github.com/asle-chain/asle/app"
	registrykeeper "github.com/asle-chain/asle/x/registry/keeper"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
)

// HostContext mounts a fresh in-memory host store and returns its key plus
// a context over it.
func HostContext(t testing.TB) (*storetypes.KVStoreKey, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(registrytypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	return storeKey, ctx
}

// Authority is the default admin address string used across fixtures.
func Authority() string {
	return authtypes.NewModuleAddress(govtypes.ModuleName).String()
}

// RegistrySelfAddress is the registry's own module address.
func RegistrySelfAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(registrytypes.ModuleName)
}

// TestAddress returns a deterministic 20-byte test address.
func TestAddress(b byte) sdk.AccAddress {
	return sdk.AccAddress(bytes.Repeat([]byte{b}, 20))
}

// RegistryKeeper builds a registry keeper over a fresh host store with an
// empty module table.
func RegistryKeeper(t testing.TB) (registrykeeper.Keeper, *app.ModuleTable, sdk.Context) {
	storeKey, ctx := HostContext(t)
	table := app.NewModuleTable()
	k := registrykeeper.NewKeeper(storeKey, table, RegistrySelfAddress())
	return k, table, ctx
}

// InitializedRegistryKeeper is RegistryKeeper with ownership already
// assigned to owner.
func InitializedRegistryKeeper(t testing.TB, owner sdk.AccAddress) (registrykeeper.Keeper, *app.ModuleTable, sdk.Context) {
	k, table, ctx := RegistryKeeper(t)
	require.NoError(t, k.InitializeOwner(ctx, owner))
	return k, table, ctx
}

// StubModule is a deployable module for tests. Entry points not present in
// Handlers echo their payload back.
type StubModule struct {
	Addr     sdk.AccAddress
	IDs      []registrytypes.FunctionID
	Handlers map[registrytypes.FunctionID]registrytypes.Handler
}

// NewStubModule deploys nothing; it builds a module whose address derives
// from name and which answers every id in ids with an echo handler.
func NewStubModule(name string, ids ...registrytypes.FunctionID) *StubModule {
	return &StubModule{
		Addr:     authtypes.NewModuleAddress(name),
		IDs:      ids,
		Handlers: make(map[registrytypes.FunctionID]registrytypes.Handler),
	}
}

func (m *StubModule) Address() sdk.AccAddress {
	return m.Addr
}

func (m *StubModule) Handler(id registrytypes.FunctionID) (registrytypes.Handler, bool) {
	if h, ok := m.Handlers[id]; ok {
		return h, true
	}
	for _, known := range m.IDs {
		if known == id {
			return func(_ sdk.Context, _ sdk.AccAddress, payload []byte) ([]byte, error) {
				return payload, nil
			}, true
		}
	}
	return nil, false
}
