package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fenilsonani/desk-triage/internal/config"
)

// Builder constructs a strategy from the resolved configuration
type Builder func(cfg *config.StrategyConfig) Strategy

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{}
)

// Register makes a strategy available under the given provider name.
// New strategies plug in here without touching the coordinator.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = builder
}

// New resolves a provider name to a strategy instance
func New(name string, cfg *config.StrategyConfig) (Strategy, error) {
	registryMu.RLock()
	builder, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %v)", name, Registered())
	}

	return builder(cfg), nil
}

// Registered lists the registered provider names in sorted order
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
