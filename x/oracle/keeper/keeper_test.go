package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/asle-chain/asle/testutil/keeper"
	oraclekeeper "github.com/asle-chain/asle/x/oracle/keeper"
	"github.com/asle-chain/asle/x/oracle/types"
)

type OracleTestSuite struct {
	suite.Suite
	keeper oraclekeeper.Keeper
	ctx    sdk.Context

	feeder sdk.AccAddress
}

func (s *OracleTestSuite) SetupTest() {
	s.keeper, s.ctx = keepertest.OracleKeeper(s.T())
	s.ctx = s.ctx.WithBlockTime(time.Unix(1_700_000_000, 0))
	s.feeder = keepertest.TestAddress(0x61)

	params := types.DefaultParams()
	params.Feeders = []string{s.feeder.String()}
	s.Require().NoError(s.keeper.SetParams(s.ctx, params))
}

func TestOracleTestSuite(t *testing.T) {
	suite.Run(t, new(OracleTestSuite))
}

func (s *OracleTestSuite) TestPostAndRead() {
	price := math.LegacyMustNewDecFromStr("2.5")
	s.Require().NoError(s.keeper.SetPrice(s.ctx, s.feeder, "ubase", "uquote", price))

	got, ok := s.keeper.GetReferencePrice(s.ctx, "ubase", "uquote")
	s.Require().True(ok)
	s.Require().True(price.Equal(got))

	// Pairs are directional.
	_, ok = s.keeper.GetReferencePrice(s.ctx, "uquote", "ubase")
	s.Require().False(ok)
}

func (s *OracleTestSuite) TestLatestPostWins() {
	s.Require().NoError(s.keeper.SetPrice(s.ctx, s.feeder, "ubase", "uquote", math.LegacyNewDec(2)))
	s.Require().NoError(s.keeper.SetPrice(s.ctx, s.feeder, "ubase", "uquote", math.LegacyNewDec(3)))

	got, ok := s.keeper.GetReferencePrice(s.ctx, "ubase", "uquote")
	s.Require().True(ok)
	s.Require().True(math.LegacyNewDec(3).Equal(got))
}

func (s *OracleTestSuite) TestStalePriceIsNotServed() {
	s.Require().NoError(s.keeper.SetPrice(s.ctx, s.feeder, "ubase", "uquote", math.LegacyNewDec(2)))

	params, err := s.keeper.GetParams(s.ctx)
	s.Require().NoError(err)

	// Just inside the horizon the price is still served.
	later := s.ctx.WithBlockTime(s.ctx.BlockTime().Add(time.Duration(params.MaxPriceAgeSeconds) * time.Second))
	_, ok := s.keeper.GetReferencePrice(later, "ubase", "uquote")
	s.Require().True(ok)

	// One second past it, the feed goes silent but keeps the record.
	stale := later.WithBlockTime(later.BlockTime().Add(time.Second))
	_, ok = s.keeper.GetReferencePrice(stale, "ubase", "uquote")
	s.Require().False(ok)

	var feeds int
	s.keeper.IterateFeeds(stale, func(types.PriceFeed) bool {
		feeds++
		return false
	})
	s.Require().Equal(1, feeds)

	// A fresh post revives the pair.
	s.Require().NoError(s.keeper.SetPrice(stale, s.feeder, "ubase", "uquote", math.LegacyNewDec(4)))
	got, ok := s.keeper.GetReferencePrice(stale, "ubase", "uquote")
	s.Require().True(ok)
	s.Require().True(math.LegacyNewDec(4).Equal(got))
}

func (s *OracleTestSuite) TestSetPriceErrors() {
	tests := []struct {
		name    string
		feeder  sdk.AccAddress
		base    string
		quote   string
		price   math.LegacyDec
		wantErr error
	}{
		{"unregistered feeder", keepertest.TestAddress(0x71), "ubase", "uquote", math.LegacyNewDec(1), types.ErrNotFeeder},
		{"identical pair", s.feeder, "ubase", "ubase", math.LegacyNewDec(1), types.ErrInvalidPair},
		{"empty base", s.feeder, "", "uquote", math.LegacyNewDec(1), types.ErrInvalidPair},
		{"zero price", s.feeder, "ubase", "uquote", math.LegacyZeroDec(), types.ErrInvalidPrice},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.keeper.SetPrice(s.ctx, tc.feeder, tc.base, tc.quote, tc.price)
			s.Require().ErrorIs(err, tc.wantErr)
		})
	}
}

func (s *OracleTestSuite) TestUpdateParams() {
	authority, err := sdk.AccAddressFromBech32(s.keeper.GetAuthority())
	s.Require().NoError(err)

	params := types.DefaultParams()
	params.MaxPriceAgeSeconds = 60
	s.Require().NoError(s.keeper.UpdateParams(s.ctx, authority, params))

	got, err := s.keeper.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(60), got.MaxPriceAgeSeconds)

	err = s.keeper.UpdateParams(s.ctx, s.feeder, params)
	s.Require().Error(err)

	params.MaxPriceAgeSeconds = 0
	s.Require().ErrorIs(s.keeper.UpdateParams(s.ctx, authority, params), types.ErrInvalidParams)
}

func TestOracleGenesisRoundTrip(t *testing.T) {
	k, ctx := keepertest.OracleKeeper(t)
	ctx = ctx.WithBlockTime(time.Unix(1_700_000_000, 0))
	feeder := keepertest.TestAddress(0x61)

	gs := types.GenesisState{
		Params: types.Params{
			Feeders:            []string{feeder.String()},
			MaxPriceAgeSeconds: 120,
		},
		Feeds: []types.PriceFeed{
			{Base: "ubase", Quote: "uquote", Price: math.LegacyNewDec(2), UpdatedAt: ctx.BlockTime().Unix()},
		},
	}
	require.NoError(t, k.InitGenesis(ctx, gs))

	price, ok := k.GetReferencePrice(ctx, "ubase", "uquote")
	require.True(t, ok)
	require.True(t, math.LegacyNewDec(2).Equal(price))

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Equal(t, gs.Params, exported.Params)
	require.Equal(t, gs.Feeds, exported.Feeds)

	// Duplicate feeds fail validation.
	gs.Feeds = append(gs.Feeds, gs.Feeds[0])
	require.ErrorIs(t, gs.Validate(), types.ErrInvalidGenesis)
}
