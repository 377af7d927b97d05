package vectorstore_test

import (
	"context"
	"testing"

	"github.com/poiesic/docqa/core"
	badgerstore "github.com/poiesic/docqa/storage/badger"
	"github.com/poiesic/docqa/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) *vectorstore.Manager {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	manager, err := vectorstore.NewManager(badgerstore.NewVectorStore(backend))
	require.NoError(t, err)
	return manager
}

func TestNewManager(t *testing.T) {
	_, err := vectorstore.NewManager(nil)
	assert.ErrorIs(t, err, vectorstore.ErrStoreRequired)
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing collection", func(t *testing.T) {
		manager := setupManager(t)

		name, err := manager.Ensure(ctx, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, core.CollectionNameForUser(1), name)

		exists, err := manager.HasCollection(ctx, 1)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("idempotent for matching dimension", func(t *testing.T) {
		manager := setupManager(t)

		_, err := manager.Ensure(ctx, 1, 4)
		require.NoError(t, err)
		require.NoError(t, manager.Insert(ctx, 1, []*core.ChunkRecord{
			{DocumentId: 1, Content: "kept", Vector: []float32{1, 0, 0, 0}},
		}))

		_, err = manager.Ensure(ctx, 1, 4)
		require.NoError(t, err)

		results, err := manager.Search(ctx, 1, []float32{1, 0, 0, 0}, 5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("rebuilds on dimension mismatch", func(t *testing.T) {
		manager := setupManager(t)

		_, err := manager.Ensure(ctx, 1, 4)
		require.NoError(t, err)
		require.NoError(t, manager.Insert(ctx, 1, []*core.ChunkRecord{
			{DocumentId: 1, Content: "old model", Vector: []float32{1, 0, 0, 0}},
		}))

		// A new embedding model with a different width forces a rebuild
		// that empties the collection.
		_, err = manager.Ensure(ctx, 1, 3)
		require.NoError(t, err)

		results, err := manager.Search(ctx, 1, []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)

		require.NoError(t, manager.Insert(ctx, 1, []*core.ChunkRecord{
			{DocumentId: 2, Content: "new model", Vector: []float32{0, 1, 0}},
		}))
	})

	t.Run("rejects invalid dimension", func(t *testing.T) {
		manager := setupManager(t)

		_, err := manager.Ensure(ctx, 1, 0)
		assert.ErrorIs(t, err, vectorstore.ErrInvalidDimension)
	})
}

func TestSearchWithoutCollection(t *testing.T) {
	manager := setupManager(t)

	results, err := manager.Search(context.Background(), 42, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDeleteDocumentChunks(t *testing.T) {
	manager := setupManager(t)
	ctx := context.Background()

	_, err := manager.Ensure(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, manager.Insert(ctx, 1, []*core.ChunkRecord{
		{DocumentId: 1, Content: "stays", Vector: []float32{1, 0}},
		{DocumentId: 2, Content: "goes", Vector: []float32{0, 1}},
	}))

	removed, err := manager.DeleteDocumentChunks(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	results, err := manager.Search(ctx, 1, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "stays", results[0].Chunk.Content)
}
