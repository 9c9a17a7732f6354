package keeper_test

import (
	"fmt"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	"github.com/asle-chain/asle/x/registry/keeper"
	"github.com/asle-chain/asle/x/registry/types"
)

func fid(s string) types.FunctionID {
	return types.FunctionIDFromSignature(s)
}

type RoutesTestSuite struct {
	suite.Suite
	keeper keeper.Keeper
	table  interface {
		Deploy(m types.Module) error
	}
	ctx sdk.Context

	modA *keepertest.StubModule
	modB *keepertest.StubModule
}

func (s *RoutesTestSuite) SetupTest() {
	k, table, ctx := keepertest.RegistryKeeper(s.T())
	s.keeper = k
	s.table = table
	s.ctx = ctx

	s.modA = keepertest.NewStubModule("mod_a")
	s.modB = keepertest.NewStubModule("mod_b")
	s.Require().NoError(table.Deploy(s.modA))
	s.Require().NoError(table.Deploy(s.modB))
}

func TestRoutesTestSuite(t *testing.T) {
	suite.Run(t, new(RoutesTestSuite))
}

func (s *RoutesTestSuite) TestAddAndResolve() {
	ids := []types.FunctionID{fid("a()"), fid("b()"), fid("c()")}
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, ids))

	for _, id := range ids {
		module, ok := s.keeper.Resolve(s.ctx, id)
		s.Require().True(ok)
		s.Require().Equal(s.modA.Addr, module)
	}

	_, ok := s.keeper.Resolve(s.ctx, fid("missing()"))
	s.Require().False(ok)
}

func (s *RoutesTestSuite) TestAddRejectsDuplicate() {
	id := fid("dup()")
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, []types.FunctionID{id}))

	err := s.keeper.AddRoutes(s.ctx, s.modB.Addr, []types.FunctionID{id})
	s.Require().ErrorIs(err, types.ErrRouteExists)

	// The failed batch must not have moved the route.
	module, ok := s.keeper.Resolve(s.ctx, id)
	s.Require().True(ok)
	s.Require().Equal(s.modA.Addr, module)
}

func (s *RoutesTestSuite) TestAddRequiresCode() {
	ghost := keepertest.NewStubModule("ghost")

	err := s.keeper.AddRoutes(s.ctx, ghost.Addr, []types.FunctionID{fid("g()")})
	s.Require().ErrorIs(err, types.ErrModuleHasNoCode)

	// Once deployed, the same add succeeds.
	s.Require().NoError(s.table.Deploy(ghost))
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, ghost.Addr, []types.FunctionID{fid("g()")}))
}

func (s *RoutesTestSuite) TestAddInputErrors() {
	tests := []struct {
		name    string
		module  sdk.AccAddress
		ids     []types.FunctionID
		wantErr error
	}{
		{
			name:    "null module",
			module:  nil,
			ids:     []types.FunctionID{fid("x()")},
			wantErr: types.ErrZeroAddress,
		},
		{
			name:    "empty batch",
			module:  s.modA.Addr,
			ids:     nil,
			wantErr: types.ErrEmptyFunctionIDs,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.keeper.AddRoutes(s.ctx, tc.module, tc.ids)
			s.Require().ErrorIs(err, tc.wantErr)
		})
	}
}

func (s *RoutesTestSuite) TestReplaceMovesRoute() {
	id := fid("moved()")
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, []types.FunctionID{id}))

	s.Require().NoError(s.keeper.ReplaceRoutes(s.ctx, s.modB.Addr, []types.FunctionID{id}))

	module, ok := s.keeper.Resolve(s.ctx, id)
	s.Require().True(ok)
	s.Require().Equal(s.modB.Addr, module)

	// modA lost its only identifier and must have left the module list.
	s.Require().Empty(s.keeper.ListFunctionIDs(s.ctx, s.modA.Addr))
	modules := s.keeper.ListModules(s.ctx)
	s.Require().Len(modules, 1)
	s.Require().Equal(s.modB.Addr, modules[0])
}

func (s *RoutesTestSuite) TestReplaceErrors() {
	id := fid("rep()")
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, []types.FunctionID{id}))

	tests := []struct {
		name    string
		module  sdk.AccAddress
		ids     []types.FunctionID
		wantErr error
	}{
		{
			name:    "null module",
			module:  nil,
			ids:     []types.FunctionID{id},
			wantErr: types.ErrZeroAddress,
		},
		{
			name:    "unrouted identifier",
			module:  s.modB.Addr,
			ids:     []types.FunctionID{fid("unrouted()")},
			wantErr: types.ErrRouteNotFound,
		},
		{
			name:    "same-owner no-op",
			module:  s.modA.Addr,
			ids:     []types.FunctionID{id},
			wantErr: types.ErrSameModuleReplace,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.keeper.ReplaceRoutes(s.ctx, tc.module, tc.ids)
			s.Require().ErrorIs(err, tc.wantErr)
		})
	}
}

func (s *RoutesTestSuite) TestRemoveRequiresNullOperand() {
	id := fid("rm()")
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, []types.FunctionID{id}))

	err := s.keeper.RemoveRoutes(s.ctx, s.modA.Addr, []types.FunctionID{id})
	s.Require().ErrorIs(err, types.ErrRemoveTargetNotNull)

	s.Require().NoError(s.keeper.RemoveRoutes(s.ctx, nil, []types.FunctionID{id}))
	_, ok := s.keeper.Resolve(s.ctx, id)
	s.Require().False(ok)
}

func (s *RoutesTestSuite) TestRemoveUnroutedFails() {
	err := s.keeper.RemoveRoutes(s.ctx, nil, []types.FunctionID{fid("nothing()")})
	s.Require().ErrorIs(err, types.ErrRouteNotFound)
}

func (s *RoutesTestSuite) TestSwapAndPopKeepsResolution() {
	// Five identifiers, remove from the middle, the front, and the back.
	ids := []types.FunctionID{
		fid("f0()"), fid("f1()"), fid("f2()"), fid("f3()"), fid("f4()"),
	}
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, ids))

	for _, victim := range []types.FunctionID{ids[2], ids[0], ids[4]} {
		s.Require().NoError(s.keeper.RemoveRoutes(s.ctx, nil, []types.FunctionID{victim}))

		_, ok := s.keeper.Resolve(s.ctx, victim)
		s.Require().False(ok)
	}

	// Survivors still resolve and the arena agrees with the route index.
	for _, id := range []types.FunctionID{ids[1], ids[3]} {
		module, ok := s.keeper.Resolve(s.ctx, id)
		s.Require().True(ok)
		s.Require().Equal(s.modA.Addr, module)
	}
	s.Require().ElementsMatch(
		[]types.FunctionID{ids[1], ids[3]},
		s.keeper.ListFunctionIDs(s.ctx, s.modA.Addr),
	)

	_, broken := keeper.AllInvariants(s.keeper)(s.ctx)
	s.Require().False(broken)
}

func (s *RoutesTestSuite) TestModuleListSwapAndPop() {
	modC := keepertest.NewStubModule("mod_c")
	s.Require().NoError(s.table.Deploy(modC))

	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modA.Addr, []types.FunctionID{fid("a()")}))
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, s.modB.Addr, []types.FunctionID{fid("b()")}))
	s.Require().NoError(s.keeper.AddRoutes(s.ctx, modC.Addr, []types.FunctionID{fid("c()")}))

	// Empty the first module; the global list must close the gap and keep
	// the tail modules resolvable.
	s.Require().NoError(s.keeper.RemoveRoutes(s.ctx, nil, []types.FunctionID{fid("a()")}))

	modules := s.keeper.ListModules(s.ctx)
	s.Require().Len(modules, 2)
	s.Require().ElementsMatch([]sdk.AccAddress{s.modB.Addr, modC.Addr}, modules)

	_, broken := keeper.AllInvariants(s.keeper)(s.ctx)
	s.Require().False(broken)
}

// Arbitrary add/remove interleavings must keep the route table, the arenas
// and a model map in agreement.
func TestRouteTableModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k, table, ctx := keepertest.RegistryKeeper(t)

		moduleCount := rapid.IntRange(1, 4).Draw(rt, "modules")
		modules := make([]*keepertest.StubModule, moduleCount)
		for i := range modules {
			modules[i] = keepertest.NewStubModule(fmt.Sprintf("rapid_mod_%d", i))
			if err := table.Deploy(modules[i]); err != nil {
				rt.Fatalf("deploy: %v", err)
			}
		}

		ids := make([]types.FunctionID, rapid.IntRange(1, 12).Draw(rt, "ids"))
		for i := range ids {
			ids[i] = fid(fmt.Sprintf("rapid_fn_%d()", i))
		}

		model := make(map[types.FunctionID]string)
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for step := 0; step < steps; step++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			module := rapid.SampledFrom(modules).Draw(rt, "module")

			switch rapid.SampledFrom([]string{"add", "replace", "remove"}).Draw(rt, "op") {
			case "add":
				err := k.AddRoutes(ctx, module.Addr, []types.FunctionID{id})
				if _, routed := model[id]; routed {
					if err == nil {
						rt.Fatalf("add of routed %s succeeded", id)
					}
				} else {
					if err != nil {
						rt.Fatalf("add of %s failed: %v", id, err)
					}
					model[id] = module.Addr.String()
				}
			case "replace":
				err := k.ReplaceRoutes(ctx, module.Addr, []types.FunctionID{id})
				owner, routed := model[id]
				switch {
				case !routed, owner == module.Addr.String():
					if err == nil {
						rt.Fatalf("replace of %s should have failed", id)
					}
				default:
					if err != nil {
						rt.Fatalf("replace of %s failed: %v", id, err)
					}
					model[id] = module.Addr.String()
				}
			case "remove":
				err := k.RemoveRoutes(ctx, nil, []types.FunctionID{id})
				if _, routed := model[id]; routed {
					if err != nil {
						rt.Fatalf("remove of %s failed: %v", id, err)
					}
					delete(model, id)
				} else if err == nil {
					rt.Fatalf("remove of unrouted %s succeeded", id)
				}
			}

			for _, checkID := range ids {
				got, ok := k.Resolve(ctx, checkID)
				want, routed := model[checkID]
				if ok != routed {
					rt.Fatalf("%s: resolved=%v, model routed=%v", checkID, ok, routed)
				}
				if ok && got.String() != want {
					rt.Fatalf("%s: resolved to %s, model says %s", checkID, got, want)
				}
			}
			if msg, broken := keeper.AllInvariants(k)(ctx); broken {
				rt.Fatalf("invariant broken: %s", msg)
			}
		}
	})
}

func TestPositionsStayDense(t *testing.T) {
	k, table, ctx := keepertest.RegistryKeeper(t)
	mod := keepertest.NewStubModule("dense")
	require.NoError(t, table.Deploy(mod))

	ids := make([]types.FunctionID, 8)
	for i := range ids {
		ids[i] = fid(fmt.Sprintf("dense_%d()", i))
	}
	require.NoError(t, k.AddRoutes(ctx, mod.Addr, ids))

	// Remove every other identifier, then confirm the remaining arena is
	// exactly the survivor set with no holes.
	for i := 0; i < len(ids); i += 2 {
		require.NoError(t, k.RemoveRoutes(ctx, nil, []types.FunctionID{ids[i]}))
	}

	survivors := k.ListFunctionIDs(ctx, mod.Addr)
	require.Len(t, survivors, 4)
	require.ElementsMatch(t,
		[]types.FunctionID{ids[1], ids[3], ids[5], ids[7]},
		survivors,
	)
}
