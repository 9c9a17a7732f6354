package types

import (
	"cosmossdk.io/math"
)

// GenesisState seeds the pool engine at startup.
type GenesisState struct {
	Params       Params        `json:"params"`
	NextPoolID   uint64        `json:"next_pool_id"`
	Pools        []Pool        `json:"pools"`
	Positions    []Position    `json:"positions"`
	PoolFees     []PoolFee     `json:"pool_fees,omitempty"`
	ProtocolFees []ProtocolFee `json:"protocol_fees,omitempty"`
}

// DefaultGenesis returns an empty engine with default parameters.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		NextPoolID: 1,
	}
}

// Validate checks the genesis state for internal consistency: valid pools
// with unique in-range ids, positions that reference known pools and sum
// to each pool's total share supply, and positive fee balances on known
// denominations.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if uint64(len(gs.Pools)) > gs.Params.MaxPools {
		return ErrInvalidGenesis.Wrapf("%d pools exceed the cap of %d", len(gs.Pools), gs.Params.MaxPools)
	}

	pools := make(map[uint64]Pool, len(gs.Pools))
	for _, pool := range gs.Pools {
		if err := pool.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %v", pool.ID, err)
		}
		if pool.ID == 0 {
			return ErrInvalidGenesis.Wrap("pool id cannot be zero")
		}
		if gs.NextPoolID > 0 && pool.ID >= gs.NextPoolID {
			return ErrInvalidGenesis.Wrapf("pool id %d is not below the next id %d", pool.ID, gs.NextPoolID)
		}
		if _, ok := pools[pool.ID]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate pool id %d", pool.ID)
		}
		pools[pool.ID] = pool
	}

	type positionKey struct {
		poolID   uint64
		provider string
	}
	seen := make(map[positionKey]bool, len(gs.Positions))
	sums := make(map[uint64]math.Int, len(gs.Pools))
	for _, pos := range gs.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
		if _, ok := pools[pos.PoolID]; !ok {
			return ErrInvalidGenesis.Wrapf("position references unknown pool %d", pos.PoolID)
		}
		key := positionKey{pos.PoolID, pos.Provider}
		if seen[key] {
			return ErrInvalidGenesis.Wrapf("duplicate position for pool %d provider %s", pos.PoolID, pos.Provider)
		}
		seen[key] = true
		sum, ok := sums[pos.PoolID]
		if !ok {
			sum = math.ZeroInt()
		}
		sums[pos.PoolID] = sum.Add(pos.Shares)
	}
	for id, pool := range pools {
		sum, ok := sums[id]
		if !ok {
			sum = math.ZeroInt()
		}
		if !sum.Equal(pool.TotalShares) {
			return ErrInvalidGenesis.Wrapf("pool %d positions sum to %s, total shares are %s", id, sum, pool.TotalShares)
		}
	}

	for _, fee := range gs.PoolFees {
		pool, ok := pools[fee.PoolID]
		if !ok {
			return ErrInvalidGenesis.Wrapf("fee record references unknown pool %d", fee.PoolID)
		}
		if !pool.HasDenom(fee.Denom) {
			return ErrInvalidGenesis.Wrapf("fee denom %s is not part of pool %d", fee.Denom, fee.PoolID)
		}
		if fee.Amount.IsNil() || !fee.Amount.IsPositive() {
			return ErrInvalidGenesis.Wrapf("pool %d fee balance must be positive", fee.PoolID)
		}
	}
	for _, fee := range gs.ProtocolFees {
		if fee.Denom == "" {
			return ErrInvalidGenesis.Wrap("protocol fee denom cannot be empty")
		}
		if fee.Amount.IsNil() || !fee.Amount.IsPositive() {
			return ErrInvalidGenesis.Wrapf("protocol fee balance for %s must be positive", fee.Denom)
		}
	}
	return nil
}
