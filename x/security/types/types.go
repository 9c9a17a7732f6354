package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/asle-chain/asle/x/shared/regions"
)

const (
	// ModuleName is the security module's name and error codespace.
	ModuleName = "security"

	// RegionTag derives the module's storage region.
	RegionTag = "asle.storage.security"
)

// Region is the module's reserved partition of the host store.
var Region = regions.MustNew(RegionTag)

// Security sentinel errors
var (
	ErrUnauthorized     = errors.Register(ModuleName, 2, "caller may not operate the security controls")
	ErrAlreadyPaused    = errors.Register(ModuleName, 3, "host is already paused")
	ErrNotPaused        = errors.Register(ModuleName, 4, "host is not paused")
	ErrInvalidBreaker   = errors.Register(ModuleName, 5, "invalid circuit breaker configuration")
	ErrBreakerNotFound  = errors.Register(ModuleName, 6, "no circuit breaker configured for pool")
	ErrBreakerNotOpen   = errors.Register(ModuleName, 7, "circuit breaker is not tripped")
	ErrInvalidGenesis   = errors.Register(ModuleName, 8, "invalid security genesis state")
	ErrInvalidPayload   = errors.Register(ModuleName, 9, "malformed call payload")
)

// Security event types and attribute keys
const (
	EventTypePaused         = "host_paused"
	EventTypeUnpaused       = "host_unpaused"
	EventTypeBreakerSet     = "circuit_breaker_configured"
	EventTypeBreakerTripped = "circuit_breaker_tripped"
	EventTypeBreakerReset   = "circuit_breaker_reset"

	AttributeKeyActor  = "actor"
	AttributeKeyReason = "reason"
	AttributeKeyPoolID = "pool_id"
	AttributeKeyPrice  = "price"
)

// PauseState is the global pause switch with its provenance.
type PauseState struct {
	Paused bool   `json:"paused"`
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

// BreakerConfig bounds a pool's price movement: a check trips the breaker
// when the observed price deviates from the last accepted reference by
// more than MaxDeviationBps, and a tripped breaker rejects trades until
// CooldownSeconds have passed.
type BreakerConfig struct {
	MaxDeviationBps uint32 `json:"max_deviation_bps"`
	CooldownSeconds uint64 `json:"cooldown_seconds"`
}

// Validate checks configuration bounds.
func (c BreakerConfig) Validate() error {
	if c.MaxDeviationBps == 0 || c.MaxDeviationBps > 10000 {
		return ErrInvalidBreaker.Wrapf("max deviation %d bps outside (0, 10000]", c.MaxDeviationBps)
	}
	if c.CooldownSeconds == 0 {
		return ErrInvalidBreaker.Wrap("cooldown must be positive")
	}
	return nil
}

// BreakerState is a pool's live breaker record.
type BreakerState struct {
	Config         BreakerConfig  `json:"config"`
	ReferencePrice math.LegacyDec `json:"reference_price"`
	Tripped        bool           `json:"tripped"`
	TrippedAt      int64          `json:"tripped_at,omitempty"`
}

// PoolBreaker pairs a pool with its breaker record, used in genesis.
type PoolBreaker struct {
	PoolID  uint64       `json:"pool_id"`
	Breaker BreakerState `json:"breaker"`
}

// GenesisState seeds the security module.
type GenesisState struct {
	Pause    PauseState    `json:"pause"`
	Breakers []PoolBreaker `json:"breakers,omitempty"`
}

// DefaultGenesis returns an unpaused module with no breakers.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate checks the genesis state.
func (gs GenesisState) Validate() error {
	seen := make(map[uint64]struct{}, len(gs.Breakers))
	for _, pb := range gs.Breakers {
		if err := pb.Breaker.Config.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %v", pb.PoolID, err)
		}
		if pb.Breaker.ReferencePrice.IsNil() || pb.Breaker.ReferencePrice.IsNegative() {
			return ErrInvalidGenesis.Wrapf("pool %d: negative reference price", pb.PoolID)
		}
		if _, ok := seen[pb.PoolID]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate breaker for pool %d", pb.PoolID)
		}
		seen[pb.PoolID] = struct{}{}
	}
	return nil
}
