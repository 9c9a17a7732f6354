package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState seeds the registry: the first owner and the permanent entry
// points installed under the registry's own self address.
type GenesisState struct {
	Owner           string       `json:"owner"`
	SelfFunctionIDs []FunctionID `json:"self_function_ids"`
}

// DefaultGenesis returns a genesis with no owner; the host must fill one in
// before initialization.
func DefaultGenesis() GenesisState {
	return GenesisState{}
}

// Validate checks the genesis for a parseable owner and duplicate-free self
// identifiers.
func (gs GenesisState) Validate() error {
	if gs.Owner == "" {
		return ErrInvalidGenesis.Wrap("owner is empty")
	}
	if _, err := sdk.AccAddressFromBech32(gs.Owner); err != nil {
		return ErrInvalidGenesis.Wrapf("owner: %s", err)
	}
	seen := make(map[FunctionID]struct{}, len(gs.SelfFunctionIDs))
	for _, id := range gs.SelfFunctionIDs {
		if _, ok := seen[id]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate self identifier %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
