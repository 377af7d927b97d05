package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docqa/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

func init() {
	ai.Register(ai.KindOllama, NewProvider)
}

// Provider implements ai.Provider using the native Ollama API.
// Embedding and generation use separate clients so they can point at
// different models and hosts.
type Provider struct {
	embedder  *embedderImpl
	generator *generatorImpl
	logger    *slog.Logger
}

// NewProvider creates a new AI provider backed by Ollama.
// The config is validated before use.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedClient, err := ollama.New(
		ollama.WithServerURL(config.EmbeddingHost),
		ollama.WithModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(embedClient, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	genClient, err := ollama.New(
		ollama.WithServerURL(config.GenerationHost),
		ollama.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder: &embedderImpl{
			embedder: embedder,
			logger:   slog.Default().With("component", "ollama-embedder"),
		},
		generator: &generatorImpl{
			client: genClient,
			logger: slog.Default().With("component", "ollama-generator"),
		},
		logger: slog.Default().With("component", "ollama-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the answer generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	p.logger.Debug("closing Ollama provider")
	return nil
}

type embedderImpl struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.Embedder = (*embedderImpl)(nil)

func (e *embedderImpl) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: provider returned no vectors", ai.ErrEmbedding)
	}
	return vectors[0], nil
}

func (e *embedderImpl) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, received %d", ai.ErrEmbedding, len(texts), len(vectors))
	}
	return vectors, nil
}

type generatorImpl struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Generator = (*generatorImpl)(nil)

func (g *generatorImpl) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt)
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrGeneration, err)
	}
	return strings.TrimSpace(completion), nil
}
