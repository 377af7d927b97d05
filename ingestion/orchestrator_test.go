package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/docqa/ai/mock"
	"github.com/poiesic/docqa/blob"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	badgerstore "github.com/poiesic/docqa/storage/badger"
	"github.com/poiesic/docqa/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	orchestrator *Orchestrator
	documents    storage.DocumentRepository
	blobs        blob.Store
	embedder     *mock.MockEmbedder
	manager      *vectorstore.Manager
}

func setupOrchestrator(t *testing.T, opts ...Option) *orchestratorFixture {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)

	documents, err := badgerstore.NewDocumentRepository(backend)
	require.NoError(t, err)

	blobs, err := blob.NewDir(t.TempDir())
	require.NoError(t, err)

	manager, err := vectorstore.NewManager(badgerstore.NewVectorStore(backend))
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8

	opts = append([]Option{WithRetry(2, time.Millisecond)}, opts...)
	orchestrator, err := NewOrchestrator(documents, blobs, embedder, manager, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		orchestrator.Release()
		documents.Close()
		backend.Close()
	})

	return &orchestratorFixture{
		orchestrator: orchestrator,
		documents:    documents,
		blobs:        blobs,
		embedder:     embedder,
		manager:      manager,
	}
}

// uploadDocument saves a payload and registers the pending document,
// mirroring what the service facade does before enqueueing.
func (f *orchestratorFixture) uploadDocument(t *testing.T, userID core.UserID, filename, content string) *core.Document {
	t.Helper()

	locator, err := f.blobs.Save(context.Background(), filename, strings.NewReader(content))
	require.NoError(t, err)

	doc, err := f.documents.AddDocument(context.Background(), &core.Document{
		UserId:         userID,
		Filename:       filename,
		BlobLocator:    locator,
		CollectionName: core.CollectionNameForUser(userID),
		Status:         core.StatusPending,
	})
	require.NoError(t, err)
	return doc
}

func (f *orchestratorFixture) processDocument(t *testing.T, id core.ID) *core.Document {
	t.Helper()

	require.NoError(t, f.orchestrator.Enqueue(id))
	f.orchestrator.Wait()

	doc, err := f.documents.GetDocument(context.Background(), id)
	require.NoError(t, err)
	return doc
}

func TestNewOrchestrator(t *testing.T) {
	f := setupOrchestrator(t)

	tests := []struct {
		name    string
		build   func() (*Orchestrator, error)
		wantErr error
	}{
		{
			name: "nil documents",
			build: func() (*Orchestrator, error) {
				return NewOrchestrator(nil, f.blobs, f.embedder, f.manager)
			},
			wantErr: ErrDocumentRepositoryRequired,
		},
		{
			name: "nil blobs",
			build: func() (*Orchestrator, error) {
				return NewOrchestrator(f.documents, nil, f.embedder, f.manager)
			},
			wantErr: ErrBlobStoreRequired,
		},
		{
			name: "nil embedder",
			build: func() (*Orchestrator, error) {
				return NewOrchestrator(f.documents, f.blobs, nil, f.manager)
			},
			wantErr: ErrEmbedderRequired,
		},
		{
			name: "nil manager",
			build: func() (*Orchestrator, error) {
				return NewOrchestrator(f.documents, f.blobs, f.embedder, nil)
			},
			wantErr: ErrManagerRequired,
		},
		{
			name: "bad chunking option",
			build: func() (*Orchestrator, error) {
				return NewOrchestrator(f.documents, f.blobs, f.embedder, f.manager, WithChunking(10, 50))
			},
			wantErr: ErrInvalidChunking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProcessDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("processed with vectors committed", func(t *testing.T) {
		f := setupOrchestrator(t, WithChunking(50, 10))

		text := strings.Repeat("searchable sentences about quarterly revenue. ", 10)
		doc := f.uploadDocument(t, 1, "report.txt", text)

		got := f.processDocument(t, doc.Id)
		assert.Equal(t, core.StatusProcessed, got.Status)
		assert.Empty(t, got.ErrorMessage)

		results, err := f.manager.Search(ctx, 1, mock.DeterministicVector("quarterly", 8), 5)
		require.NoError(t, err)
		assert.NotEmpty(t, results)
		for _, result := range results {
			assert.Equal(t, doc.Id, result.Chunk.DocumentId)
		}
	})

	t.Run("unsupported file type fails", func(t *testing.T) {
		f := setupOrchestrator(t)

		doc := f.uploadDocument(t, 1, "report.pdf", "binary-ish payload")
		got := f.processDocument(t, doc.Id)

		assert.Equal(t, core.StatusFailed, got.Status)
		assert.Contains(t, got.ErrorMessage, "unsupported file type")
		assert.Zero(t, f.embedder.CallCount())
	})

	t.Run("empty document fails", func(t *testing.T) {
		f := setupOrchestrator(t)

		doc := f.uploadDocument(t, 1, "blank.txt", "   \n  ")
		got := f.processDocument(t, doc.Id)

		assert.Equal(t, core.StatusFailed, got.Status)
		assert.Contains(t, got.ErrorMessage, "no chunks")
	})

	t.Run("failing chunks are skipped", func(t *testing.T) {
		f := setupOrchestrator(t, WithChunking(50, 0))

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			if strings.Contains(text, "poison") {
				return nil, errors.New("model refused")
			}
			return mock.DeterministicVector(text, 8), nil
		}

		doc := f.uploadDocument(t, 1, "mixed.txt", "a fine passage of text\n\npoison passage here\n\nanother fine passage")
		got := f.processDocument(t, doc.Id)

		assert.Equal(t, core.StatusProcessed, got.Status)

		results, err := f.manager.Search(ctx, 1, mock.DeterministicVector("a fine passage of text", 8), 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		for _, result := range results {
			assert.NotContains(t, result.Chunk.Content, "poison")
		}
	})

	t.Run("all chunks failing fails the document", func(t *testing.T) {
		f := setupOrchestrator(t)

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model down")
		}

		doc := f.uploadDocument(t, 1, "report.txt", "some perfectly fine content")
		got := f.processDocument(t, doc.Id)

		assert.Equal(t, core.StatusFailed, got.Status)
		assert.Contains(t, got.ErrorMessage, "no chunks could be embedded")

		exists, err := f.manager.HasCollection(ctx, 1)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate enqueue processes once", func(t *testing.T) {
		f := setupOrchestrator(t, WithPoolSize(4))

		doc := f.uploadDocument(t, 1, "once.txt", "content processed a single time")
		for i := 0; i < 4; i++ {
			require.NoError(t, f.orchestrator.Enqueue(doc.Id))
		}
		f.orchestrator.Wait()

		got, err := f.documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessed, got.Status)

		results, err := f.manager.Search(ctx, 1, mock.DeterministicVector("content processed a single time", 8), 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}
