package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, KindOpenAI, cfg.Kind)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	assert.NotEmpty(t, cfg.GenerationModel)
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithKind(KindOllama),
		WithHost("http://localhost:9100"),
		WithEmbeddingModel("nomic-embed-text"),
		WithGenerationModel("llama3"),
		WithAPIKey("secret"),
	)

	assert.Equal(t, KindOllama, cfg.Kind)
	assert.Equal(t, "http://localhost:9100", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:9100", cfg.GenerationHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.GenerationModel)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestConfigNormalize(t *testing.T) {
	t.Run("openai hosts get /v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:8080"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:8080/v1", cfg.GenerationHost)
	})

	t.Run("trailing slash removed before suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:8080/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("existing /v1 suffix preserved", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:8080/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("ollama hosts untouched", func(t *testing.T) {
		cfg := NewConfig(WithKind(KindOllama), WithHost("http://localhost:11434"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434", cfg.EmbeddingHost)
	})

	t.Run("empty kind defaults to openai", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://h", GenerationHost: "http://h"}
		cfg.Normalize()
		assert.Equal(t, KindOpenAI, cfg.Kind)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing generation host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GenerationHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing generation model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GenerationModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Kind = Kind("huggingface")
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}
