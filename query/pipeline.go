// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/vectorstore"
)

const (
	// DefaultTopK is how many chunks are retrieved as answer context.
	DefaultTopK = 5

	// DefaultCacheTTL is how long a generated answer stays cached.
	DefaultCacheTTL = time.Hour
)

// Fixed answers for the cases where the pipeline has nothing to hand to
// the generator, or the generator let us down.
const (
	AnswerNoDocuments = "You haven't uploaded any documents yet. Please upload a document before asking questions."

	AnswerNoContent = "No relevant content was found in your documents."

	AnswerGenerationFailed = "Something went wrong while generating the answer. Please try again later."
)

const promptTemplate = "Answer the question using the context below.\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:"

// Pipeline answers questions from a user's ingested documents.
type Pipeline struct {
	embedder    ai.Embedder
	generator   ai.Generator
	collections *vectorstore.Manager
	cache       storage.AnswerCache
	history     storage.HistoryRepository
	topK        int
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithTopK sets how many chunks are retrieved as context.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(p *Pipeline) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		p.topK = k
		return nil
	}
}

// WithCacheTTL sets the answer cache lifetime.
// Default is DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Pipeline) error {
		p.cacheTTL = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new query pipeline.
func NewPipeline(
	provider ai.Provider,
	collections *vectorstore.Manager,
	cache storage.AnswerCache,
	history storage.HistoryRepository,
	opts ...Option,
) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if collections == nil {
		return nil, ErrManagerRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if history == nil {
		return nil, ErrHistoryRequired
	}

	p := &Pipeline{
		embedder:    provider.Embedder(),
		generator:   provider.Generator(),
		collections: collections,
		cache:       cache,
		history:     history,
		topK:        DefaultTopK,
		cacheTTL:    DefaultCacheTTL,
		logger:      slog.Default().With("component", "query"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Ask answers a question from the user's documents.
//
// Questions are normalized before anything else, so differently-spaced
// renderings of the same question share one cache entry. Failures after
// the cache miss degrade to the fixed fallback answers instead of
// propagating; the caller always has an answer to show. The only error
// Ask returns is an empty question.
func (p *Pipeline) Ask(ctx context.Context, userID core.UserID, question string) (string, error) {
	normalized := normalizeQuestion(question)
	if normalized == "" {
		return "", core.ErrEmptyQuestion
	}

	cacheKey := core.IDFromContent(fmt.Sprintf("%d:%s", userID, normalized))
	if answer, ok, err := p.cache.Get(ctx, cacheKey); err != nil {
		p.logger.Warn("answer cache lookup failed", "user", userID, "err", err)
	} else if ok {
		p.logger.Debug("answer cache hit", "user", userID)
		return answer, nil
	}

	// A user without a collection has never completed an ingestion;
	// don't spend provider calls on them.
	hasCollection, err := p.collections.HasCollection(ctx, userID)
	if err != nil {
		p.logger.Error("collection lookup failed", "user", userID, "err", err)
		return AnswerNoDocuments, nil
	}
	if !hasCollection {
		return AnswerNoDocuments, nil
	}

	vector, err := p.embedder.EmbedText(ctx, normalized)
	if err != nil {
		p.logger.Error("question embedding failed", "user", userID, "err", err)
		return AnswerGenerationFailed, nil
	}

	if _, err := p.collections.Ensure(ctx, userID, len(vector)); err != nil {
		p.logger.Error("collection reconciliation failed", "user", userID, "err", err)
		return AnswerNoDocuments, nil
	}

	results, err := p.collections.Search(ctx, userID, vector, p.topK)
	if err != nil {
		p.logger.Error("collection search failed", "user", userID, "err", err)
		return AnswerNoDocuments, nil
	}
	if len(results) == 0 {
		return AnswerNoContent, nil
	}

	answer, err := p.generator.Generate(ctx, buildPrompt(normalized, results))
	if err != nil {
		p.logger.Error("answer generation failed", "user", userID, "err", err)
		return AnswerGenerationFailed, nil
	}

	// Cache and history writes never block the answer.
	if err := p.cache.Set(ctx, cacheKey, answer, p.cacheTTL); err != nil {
		p.logger.Warn("answer cache write failed", "user", userID, "err", err)
	}
	record := &core.QARecord{
		UserId:   userID,
		Question: normalized,
		Answer:   answer,
	}
	if err := p.history.AppendQARecord(ctx, record); err != nil {
		p.logger.Warn("history append failed", "user", userID, "err", err)
	}

	return answer, nil
}

// normalizeQuestion trims the question and collapses runs of whitespace
// into single spaces.
func normalizeQuestion(question string) string {
	return strings.Join(strings.Fields(question), " ")
}

// buildPrompt assembles the generation prompt from retrieved chunks in
// rank order.
func buildPrompt(question string, results []*core.SearchResult) string {
	contents := make([]string, len(results))
	for i, result := range results {
		contents[i] = result.Chunk.Content
	}
	return fmt.Sprintf(promptTemplate, strings.Join(contents, "\n\n"), question)
}
