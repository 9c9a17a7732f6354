package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	pmmkeeper "github.com/asle-chain/asle/x/pmm/keeper"
	"github.com/asle-chain/asle/x/pmm/types"
)

type LiquidityTestSuite struct {
	suite.Suite
	keeper pmmkeeper.Keeper
	stubs  *keepertest.StubCollaborators
	ctx    sdk.Context

	creator  sdk.AccAddress
	provider sdk.AccAddress
	poolID   uint64
}

func (s *LiquidityTestSuite) SetupTest() {
	s.keeper, s.stubs, s.ctx = keepertest.PMMKeeper(s.T())
	s.creator = keepertest.TestAddress(0x11)
	s.provider = keepertest.TestAddress(0x22)

	// An unseeded pool: the first AddLiquidity plays the founder.
	id, err := s.keeper.CreatePool(s.ctx, s.creator,
		"ubase", "uquote",
		math.ZeroInt(), math.ZeroInt(),
		math.NewInt(10000), math.NewInt(50000),
		dec("0.5"), dec("2.0"),
	)
	s.Require().NoError(err)
	s.poolID = id
}

func TestLiquidityTestSuite(t *testing.T) {
	suite.Run(t, new(LiquidityTestSuite))
}

func (s *LiquidityTestSuite) TestFirstDepositMintsGeometricMean() {
	shares, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(100), math.NewInt(400))
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(200), shares)

	pool, err := s.keeper.GetPool(s.ctx, s.poolID)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(100), pool.BaseReserve)
	s.Require().Equal(math.NewInt(400), pool.QuoteReserve)
	s.Require().Equal(math.NewInt(200), pool.TotalShares)
	s.Require().Equal(shares, s.keeper.GetShareBalance(s.ctx, s.poolID, s.provider))
}

func (s *LiquidityTestSuite) TestFollowUpDepositIsProportional() {
	_, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(100), math.NewInt(400))
	s.Require().NoError(err)

	second := keepertest.TestAddress(0x33)
	shares, err := s.keeper.AddLiquidity(s.ctx, second, s.poolID, math.NewInt(50), math.NewInt(200))
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(100), shares)

	// A skewed deposit mints the lesser ratio; the excess quote is
	// donated to the pool.
	third := keepertest.TestAddress(0x44)
	shares, err = s.keeper.AddLiquidity(s.ctx, third, s.poolID, math.NewInt(30), math.NewInt(600))
	s.Require().NoError(err)
	// base side: 30·300/150 = 60 shares; quote side caps at 300.
	s.Require().Equal(math.NewInt(60), shares)
}

func (s *LiquidityTestSuite) TestAddLiquidityErrors() {
	s.Run("zero amount", func() {
		_, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.ZeroInt(), math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrZeroAmount)
	})
	s.Run("unknown pool", func() {
		_, err := s.keeper.AddLiquidity(s.ctx, s.provider, 999, math.NewInt(1), math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrPoolNotFound)
	})
	s.Run("paused", func() {
		s.stubs.Paused = true
		defer func() { s.stubs.Paused = false }()
		_, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(1), math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrPaused)
	})
	s.Run("access mode gate", func() {
		params, err := s.keeper.GetParams(s.ctx)
		s.Require().NoError(err)
		params.LiquidityAccessMode = 2
		s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		s.stubs.Open = false
		defer func() {
			s.stubs.Open = true
			params.LiquidityAccessMode = 0
			s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		}()

		_, err = s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(1), math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrAccessDenied)
	})
}

func (s *LiquidityTestSuite) TestRemoveLiquidityProportional() {
	_, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(100), math.NewInt(400))
	s.Require().NoError(err)

	baseOut, quoteOut, err := s.keeper.RemoveLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(50))
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(25), baseOut)
	s.Require().Equal(math.NewInt(100), quoteOut)

	pool, err := s.keeper.GetPool(s.ctx, s.poolID)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(75), pool.BaseReserve)
	s.Require().Equal(math.NewInt(300), pool.QuoteReserve)
	s.Require().Equal(math.NewInt(150), pool.TotalShares)
	s.Require().Equal(math.NewInt(150), s.keeper.GetShareBalance(s.ctx, s.poolID, s.provider))
}

func (s *LiquidityTestSuite) TestFullExitLeavesNoResidue() {
	shares, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(100), math.NewInt(400))
	s.Require().NoError(err)

	baseOut, quoteOut, err := s.keeper.RemoveLiquidity(s.ctx, s.provider, s.poolID, shares)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(100), baseOut)
	s.Require().Equal(math.NewInt(400), quoteOut)

	s.Require().True(s.keeper.GetShareBalance(s.ctx, s.poolID, s.provider).IsZero())

	var positions int
	s.keeper.IterateShareBalances(s.ctx, s.poolID, func(sdk.AccAddress, math.Int) bool {
		positions++
		return false
	})
	s.Require().Zero(positions)
}

func (s *LiquidityTestSuite) TestRemoveLiquidityErrors() {
	_, err := s.keeper.AddLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(1000000), math.NewInt(2))
	s.Require().NoError(err)
	balance := s.keeper.GetShareBalance(s.ctx, s.poolID, s.provider)

	s.Run("over-withdrawal", func() {
		_, _, err := s.keeper.RemoveLiquidity(s.ctx, s.provider, s.poolID, balance.AddRaw(1))
		s.Require().ErrorIs(err, types.ErrInsufficientShares)
	})
	s.Run("stranger holds nothing", func() {
		_, _, err := s.keeper.RemoveLiquidity(s.ctx, keepertest.TestAddress(0x55), s.poolID, math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrInsufficientShares)
	})
	s.Run("zero-rounding withdrawal", func() {
		// One share of a lopsided pool rounds the quote side to zero;
		// the withdrawal must fail rather than pay one-sided.
		_, _, err := s.keeper.RemoveLiquidity(s.ctx, s.provider, s.poolID, math.NewInt(1))
		s.Require().ErrorIs(err, types.ErrInsufficientLiquidity)
	})
}

func (s *LiquidityTestSuite) TestIterateShareBalances() {
	providers := []sdk.AccAddress{
		keepertest.TestAddress(0x61),
		keepertest.TestAddress(0x62),
		keepertest.TestAddress(0x63),
	}
	for _, p := range providers {
		_, err := s.keeper.AddLiquidity(s.ctx, p, s.poolID, math.NewInt(100), math.NewInt(400))
		s.Require().NoError(err)
	}

	seen := make(map[string]math.Int)
	s.keeper.IterateShareBalances(s.ctx, s.poolID, func(provider sdk.AccAddress, shares math.Int) bool {
		seen[provider.String()] = shares
		return false
	})

	s.Require().Len(seen, len(providers))
	for _, p := range providers {
		s.Require().Equal(math.NewInt(200), seen[p.String()])
	}
}
