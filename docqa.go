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


package docqa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/docqa/ai"
	_ "github.com/poiesic/docqa/ai/ollama"
	_ "github.com/poiesic/docqa/ai/openai"
	"github.com/poiesic/docqa/blob"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/ingestion"
	"github.com/poiesic/docqa/query"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/storage/badger"
	"github.com/poiesic/docqa/vectorstore"
)

// Service is the document question-answering system: document uploads,
// asynchronous ingestion, and retrieval-augmented answers, all backed by
// one BadgerDB store under the data directory.
type Service struct {
	backend      *badger.Backend
	documents    storage.DocumentRepository
	history      storage.HistoryRepository
	cache        storage.AnswerCache
	blobs        blob.Store
	provider     ai.Provider
	collections  *vectorstore.Manager
	orchestrator *ingestion.Orchestrator
	pipeline     *query.Pipeline
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	blobs         blob.Store
	ingestionOpts []ingestion.Option
	queryOpts     []query.Option
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a ready-made AI provider instead of building one
// from configuration. The service takes ownership and closes it.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithBlobStore supplies a blob store instead of the default directory
// store under the data directory.
func WithBlobStore(blobs blob.Store) ServiceOption {
	return func(o *serviceOptions) {
		o.blobs = blobs
	}
}

// WithIngestionOptions forwards options to the ingestion orchestrator.
func WithIngestionOptions(opts ...ingestion.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.ingestionOpts = append(o.ingestionOpts, opts...)
	}
}

// WithQueryOptions forwards options to the query pipeline.
func WithQueryOptions(opts ...query.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// NewService opens (or creates) a service rooted at dataDir.
func NewService(dataDir string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "db"), false)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	history, err := badger.NewHistoryRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	cache := badger.NewAnswerCache(backend)

	blobs := options.blobs
	if blobs == nil {
		blobs, err = blob.NewDir(filepath.Join(dataDir, "blobs"))
		if err != nil {
			history.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = ai.NewProvider(options.aiConfig)
		if err != nil {
			history.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	collections, err := vectorstore.NewManager(badger.NewVectorStore(backend))
	if err != nil {
		provider.Close()
		history.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	orchestrator, err := ingestion.NewOrchestrator(documents, blobs, provider.Embedder(), collections, options.ingestionOpts...)
	if err != nil {
		provider.Close()
		history.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := query.NewPipeline(provider, collections, cache, history, options.queryOpts...)
	if err != nil {
		orchestrator.Release()
		provider.Close()
		history.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:      backend,
		documents:    documents,
		history:      history,
		cache:        cache,
		blobs:        blobs,
		provider:     provider,
		collections:  collections,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		logger:       slog.Default(),
	}, nil
}

// Close drains in-flight ingestion and releases all resources.
func (s *Service) Close() error {
	s.orchestrator.Wait()
	s.orchestrator.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.history.Close(); err != nil {
		s.logger.Error("error closing history repository", "err", err)
		return err
	}
	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Upload stores a document payload and registers it for ingestion.
// The returned record is in the pending state; ingestion proceeds in
// the background and its outcome lands on the record.
func (s *Service) Upload(ctx context.Context, userID core.UserID, filename string, r io.Reader) (*core.Document, error) {
	locator, err := s.blobs.Save(ctx, filename, r)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	doc, err := s.documents.AddDocument(ctx, &core.Document{
		UserId:         userID,
		Filename:       filename,
		BlobLocator:    locator,
		CollectionName: core.CollectionNameForUser(userID),
		Status:         core.StatusPending,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, locator); delErr != nil {
			s.logger.Warn("orphaned blob after failed upload", "locator", locator, "err", delErr)
		}
		return nil, err
	}

	if err := s.orchestrator.Enqueue(doc.Id); err != nil {
		// The record stays pending; a later enqueue can pick it up.
		s.logger.Error("enqueueing document", "document", doc.Id, "err", err)
		return doc, err
	}
	return doc, nil
}

// Ask answers a question from the user's documents.
func (s *Service) Ask(ctx context.Context, userID core.UserID, question string) (string, error) {
	return s.pipeline.Ask(ctx, userID, question)
}

// Documents lists the user's documents, oldest first.
func (s *Service) Documents(ctx context.Context, userID core.UserID) ([]*core.Document, error) {
	return s.documents.GetDocumentsByUser(ctx, userID)
}

// Document returns one document by ID, scoped to the user.
func (s *Service) Document(ctx context.Context, userID core.UserID, documentID core.ID) (*core.Document, error) {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserId != userID {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// History returns the user's most recent question-answer exchanges.
func (s *Service) History(ctx context.Context, userID core.UserID, limit int) ([]*core.QARecord, error) {
	return s.history.RecentQARecords(ctx, userID, limit)
}

// DeleteDocument removes a document: its vectors, its stored payload,
// and finally its record. Vectors go first so a partial failure never
// leaves unreachable vectors behind a deleted record.
func (s *Service) DeleteDocument(ctx context.Context, userID core.UserID, documentID core.ID) error {
	doc, err := s.Document(ctx, userID, documentID)
	if err != nil {
		return err
	}

	removed, err := s.collections.DeleteDocumentChunks(ctx, userID, documentID)
	if err != nil {
		return fmt.Errorf("removing vectors: %w", err)
	}
	s.logger.Debug("removed document vectors", "document", documentID, "chunks", removed)

	if err := s.blobs.Delete(ctx, doc.BlobLocator); err != nil {
		s.logger.Warn("deleting blob", "locator", doc.BlobLocator, "err", err)
	}

	return s.documents.DeleteDocument(ctx, documentID)
}

// Wait blocks until all enqueued documents have finished processing.
func (s *Service) Wait() {
	s.orchestrator.Wait()
}
