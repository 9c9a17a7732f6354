// Package app wires the upgradeable execution host: one shared store, the
// dispatch registry, the deployed-module table, and the built-in engine
// modules behind it.
package app

import (
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	storemetrics "cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-metrics"

	access "github.com/asle-chain/asle/x/access"
	accesskeeper "github.com/asle-chain/asle/x/access/keeper"
	accesstypes "github.com/asle-chain/asle/x/access/types"
	oracle "github.com/asle-chain/asle/x/oracle"
	oraclekeeper "github.com/asle-chain/asle/x/oracle/keeper"
	oracletypes "github.com/asle-chain/asle/x/oracle/types"
	pmm "github.com/asle-chain/asle/x/pmm"
	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
	pmmtypes "github.com/asle-chain/asle/x/pmm/types"
	registry "github.com/asle-chain/asle/x/registry"
	registrykeeper "github.com/asle-chain/asle/x/registry/keeper"
	registrytypes "github.com/asle-chain/asle/x/registry/types"
	security "github.com/asle-chain/asle/x/security"
	securitykeeper "github.com/asle-chain/asle/x/security/keeper"
	securitytypes "github.com/asle-chain/asle/x/security/types"
)

// Options configures a new host. The zero value is usable: an in-memory
// store, the gov module address as authority and registry owner, and
// default engine parameters.
type Options struct {
	// Logger receives host and keeper logs. Defaults to a nop logger.
	Logger log.Logger

	// DB backs the commit multistore. Defaults to an in-memory DB.
	DB dbm.DB

	// Authority administers keeper parameters. Defaults to the gov module
	// address.
	Authority string

	// Owner is the initial registry owner. Defaults to the authority.
	Owner sdk.AccAddress

	// EngineParams overrides the pool engine defaults at genesis.
	EngineParams *pmmtypes.Params

	// Feeders are the accounts allowed to post oracle prices.
	Feeders []string

	// Grants are the initial role grants.
	Grants []accesstypes.RoleGrant
}

// Host is the execution container: the shared store, the five keepers over
// their regions of it, and the deployed-module table the dispatch registry
// routes into. Invocations are serialized by a host-level mutex, so callers
// observe a strict total order.
type Host struct {
	mu     sync.Mutex
	logger log.Logger

	db       dbm.DB
	cms      storetypes.CommitMultiStore
	storeKey *storetypes.KVStoreKey
	height   int64

	Table    *ModuleTable
	Registry registrykeeper.Keeper
	Engine   pmmkeeper.Keeper
	Access   accesskeeper.Keeper
	Security securitykeeper.Keeper
	Oracle   oraclekeeper.Keeper

	owner sdk.AccAddress
}

// New mounts the host store, builds the keepers, deploys the built-in
// modules and installs their routes through a genesis cut.
func New(opts Options) (*Host, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.DB == nil {
		opts.DB = dbm.NewMemDB()
	}
	if opts.Authority == "" {
		opts.Authority = authtypes.NewModuleAddress(govtypes.ModuleName).String()
	}
	if opts.Owner.Empty() {
		owner, err := sdk.AccAddressFromBech32(opts.Authority)
		if err != nil {
			return nil, ErrInvalidModule.Wrapf("authority address: %v", err)
		}
		opts.Owner = owner
	}

	storeKey := storetypes.NewKVStoreKey(registrytypes.StoreKey)
	cms := store.NewCommitMultiStore(opts.DB, opts.Logger, storemetrics.NewNoOpMetrics())
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, opts.DB)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	table := NewModuleTable()
	h := &Host{
		logger:   opts.Logger.With("module", "host"),
		db:       opts.DB,
		cms:      cms,
		storeKey: storeKey,
		height:   1,
		Table:    table,
		owner:    opts.Owner,
	}

	h.Registry = registrykeeper.NewKeeper(storeKey, table, authtypes.NewModuleAddress(registrytypes.ModuleName))
	h.Access = accesskeeper.NewKeeper(storeKey, opts.Authority)
	h.Security = securitykeeper.NewKeeper(storeKey, opts.Authority, h.Access)
	h.Oracle = oraclekeeper.NewKeeper(storeKey, opts.Authority)
	h.Engine = pmmkeeper.NewKeeper(storeKey, opts.Authority, h.Access, h.Security, h.Oracle)

	if err := h.initGenesis(opts); err != nil {
		return nil, err
	}
	h.cms.Commit()
	return h, nil
}

// initGenesis seeds every region and routes the built-in modules. The
// engine's routes go in through the cut protocol with the engine's own
// initializer carrying its genesis parameters, exactly as a later upgrade
// would.
func (h *Host) initGenesis(opts Options) error {
	ctx := h.NewContext()

	if err := h.Registry.InitGenesis(ctx, registry.DefaultGenesis(opts.Owner)); err != nil {
		return err
	}
	if err := h.Access.InitGenesis(ctx, accesstypes.GenesisState{Grants: opts.Grants}); err != nil {
		return err
	}
	if err := h.Security.InitGenesis(ctx, *securitytypes.DefaultGenesis()); err != nil {
		return err
	}

	oracleGenesis := oracletypes.DefaultGenesis()
	oracleGenesis.Params.Feeders = opts.Feeders
	if err := h.Oracle.InitGenesis(ctx, *oracleGenesis); err != nil {
		return err
	}

	h.Table.MustDeploy(registry.NewSelfModule(h.Registry))
	h.Table.MustDeploy(pmm.NewEngineModule(h.Engine))
	h.Table.MustDeploy(access.NewAccessModule(h.Access))
	h.Table.MustDeploy(security.NewSecurityModule(h.Security))
	h.Table.MustDeploy(oracle.NewFeedModule(h.Oracle))

	params := pmmtypes.DefaultParams()
	if opts.EngineParams != nil {
		params = *opts.EngineParams
	}
	initPayload, err := pmm.InitializerPayload(params)
	if err != nil {
		return err
	}

	ops := []registrytypes.CutOp{
		registrykeeper.AddOp(pmm.ModuleAddress, pmm.RoutableFunctionIDs()...),
		registrykeeper.AddOp(access.ModuleAddress, access.RoutableFunctionIDs()...),
		registrykeeper.AddOp(security.ModuleAddress, security.RoutableFunctionIDs()...),
		registrykeeper.AddOp(oracle.ModuleAddress, oracle.RoutableFunctionIDs()...),
	}
	return h.Registry.ApplyCut(ctx, opts.Owner, ops, pmm.ModuleAddress, initPayload)
}

// Owner returns the initial registry owner the host was built with.
func (h *Host) Owner() sdk.AccAddress {
	return h.owner
}

// NewContext returns a context over the host store at the current height.
// Writes through it land in the working tree and are persisted by the next
// invocation's commit.
func (h *Host) NewContext() sdk.Context {
	header := cmtproto.Header{Height: h.height, Time: time.Now().UTC()}
	return sdk.NewContext(h.cms, header, false, h.logger)
}

// DeployModule registers executable code at the module's address. Routes
// still have to be installed through a cut before the module is reachable.
func (h *Host) DeployModule(m registrytypes.Module) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Table.Deploy(m)
}

// Invoke routes one call through the dispatch registry: resolve the
// function identifier, fetch the handler from the module table, execute it
// on a branched store, and commit only on success. A failing invocation
// leaves the host byte-for-byte unchanged. Invocations are strictly
// serialized.
func (h *Host) Invoke(caller sdk.AccAddress, id registrytypes.FunctionID, payload []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	correlationID := uuid.New().String()
	ctx := h.NewContext()

	module, ok := h.Registry.Resolve(ctx, id)
	if !ok {
		return nil, ErrNoRoute.Wrap(id.String())
	}
	code, ok := h.Table.Module(module)
	if !ok {
		return nil, ErrNoHandler.Wrapf("module %s holds no code", module)
	}
	handler, ok := code.Handler(id)
	if !ok {
		return nil, ErrNoHandler.Wrapf("module %s does not implement %s", module, id)
	}

	cacheCtx, write := ctx.CacheContext()
	result, err := h.runHandler(cacheCtx, handler, caller, payload)
	if err != nil {
		h.logger.Error("invocation failed",
			"correlation_id", correlationID,
			"function_id", id.String(),
			"module", module.String(),
			"err", err,
		)
		telemetry.IncrCounterWithLabels(
			[]string{"host", "invoke"},
			1,
			[]metrics.Label{
				telemetry.NewLabel("function_id", id.String()),
				telemetry.NewLabel("result", "error"),
			},
		)
		return nil, err
	}

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"invocation",
			sdk.NewAttribute("correlation_id", correlationID),
			sdk.NewAttribute("function_id", id.String()),
			sdk.NewAttribute("module", module.String()),
			sdk.NewAttribute("caller", caller.String()),
		),
	)
	write()
	h.cms.Commit()
	h.height++

	telemetry.IncrCounterWithLabels(
		[]string{"host", "invoke"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("function_id", id.String()),
			telemetry.NewLabel("result", "ok"),
		},
	)
	h.logger.Info("invocation committed",
		"correlation_id", correlationID,
		"function_id", id.String(),
		"module", module.String(),
	)
	return result, nil
}

// runHandler shields the host from a panicking module: a panic aborts the
// invocation like an error, and the branched store is discarded.
func (h *Host) runHandler(ctx sdk.Context, handler registrytypes.Handler, caller sdk.AccAddress, payload []byte) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrInvokeAborted.Wrapf("%v", r)
		}
	}()
	return handler(ctx, caller, payload)
}
