package app

import (
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"

	registrytypes "github.com/asle-chain/asle/x/registry/types"
)

// ModuleTable is the host's code space: the set of deployed modules by
// address. The dispatch registry probes it for code existence and the host
// fetches handlers from it. Deployed code is immutable; upgrading means
// deploying a new module at a new address and cutting routes over to it.
type ModuleTable struct {
	mu      sync.RWMutex
	modules map[string]registrytypes.Module
}

var _ registrytypes.CodeResolver = (*ModuleTable)(nil)

// NewModuleTable returns an empty code space.
func NewModuleTable() *ModuleTable {
	return &ModuleTable{
		modules: make(map[string]registrytypes.Module),
	}
}

// Deploy registers a module. It fails on a module without an address and on
// an address that already holds code.
func (t *ModuleTable) Deploy(m registrytypes.Module) error {
	addr := m.Address()
	if addr.Empty() {
		return ErrInvalidModule
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	key := addr.String()
	if _, ok := t.modules[key]; ok {
		return ErrModuleExists.Wrap(key)
	}
	t.modules[key] = m
	return nil
}

// MustDeploy is Deploy for host construction, where a collision is a
// programming error.
func (t *ModuleTable) MustDeploy(m registrytypes.Module) {
	if err := t.Deploy(m); err != nil {
		panic(err)
	}
}

// HasCode reports whether addr holds deployed code.
func (t *ModuleTable) HasCode(addr sdk.AccAddress) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.modules[addr.String()]
	return ok
}

// Module returns the deployed module at addr.
func (t *ModuleTable) Module(addr sdk.AccAddress) (registrytypes.Module, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.modules[addr.String()]
	return m, ok
}

// Addresses lists every deployed module address.
func (t *ModuleTable) Addresses() []sdk.AccAddress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	addrs := make([]sdk.AccAddress, 0, len(t.modules))
	for _, m := range t.modules {
		addrs = append(addrs, m.Address())
	}
	return addrs
}
