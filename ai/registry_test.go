package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryTestProvider struct{}

func (registryTestProvider) Embedder() Embedder   { return nil }
func (registryTestProvider) Generator() Generator { return nil }
func (registryTestProvider) Close() error         { return nil }

func TestRegister(t *testing.T) {
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, KindOpenAI)
		registryMu.Unlock()
	})

	Register(KindOpenAI, func(*Config) (Provider, error) {
		return registryTestProvider{}, nil
	})

	assert.Contains(t, Kinds(), KindOpenAI)

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			Register(KindOpenAI, func(*Config) (Provider, error) {
				return registryTestProvider{}, nil
			})
		})
	})

	t.Run("nil factory panics", func(t *testing.T) {
		assert.Panics(t, func() {
			Register(Kind("broken"), nil)
		})
	})
}

func TestNewProvider(t *testing.T) {
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, KindOpenAI)
		registryMu.Unlock()
	})

	Register(KindOpenAI, func(*Config) (Provider, error) {
		return registryTestProvider{}, nil
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewProvider(nil)
		assert.ErrorIs(t, err, ErrConfigRequired)
	})

	t.Run("resolves registered kind", func(t *testing.T) {
		provider, err := NewProvider(DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, provider)
	})

	t.Run("valid kind without registered factory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Kind = KindOllama
		_, err := NewProvider(cfg)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}
