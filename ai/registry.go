package ai

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a Provider from a validated configuration.
type Factory func(config *Config) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Factory{}
)

// Register makes a provider factory available under the given kind.
// It is intended to be called from the init function of provider
// subpackages. Registering the same kind twice panics.
func Register(kind Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("ai: Register with nil factory")
	}
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("ai: Register called twice for kind %q", kind))
	}
	registry[kind] = factory
}

// Kinds returns the registered provider kinds in sorted order.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]Kind, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// NewProvider resolves config.Kind against the registry and constructs
// the provider. Resolution happens exactly once, here; no component
// downstream branches on model names or host URLs.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	factory, ok := registry[config.Kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, config.Kind)
	}

	return factory(config)
}
