package badger

import (
	"context"
	"sync"
	"testing"

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocumentRepository(t *testing.T) storage.DocumentRepository {
	t.Helper()

	repo, history, backend, err := NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		history.Close()
		backend.Close()
	})
	return repo
}

func newPendingDocument(t *testing.T, repo storage.DocumentRepository, userID core.UserID) *core.Document {
	t.Helper()

	doc, err := repo.AddDocument(context.Background(), &core.Document{
		UserId:         userID,
		Filename:       "report.txt",
		BlobLocator:    "documents/report.txt",
		CollectionName: core.CollectionNameForUser(userID),
		Status:         core.StatusPending,
	})
	require.NoError(t, err)
	return doc
}

func TestAddDocument(t *testing.T) {
	repo := setupDocumentRepository(t)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		assert.NotZero(t, doc.Id)
		assert.False(t, doc.CreatedAt.IsZero())
		assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
	})

	t.Run("round-trips through get", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		got, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("rejects invalid document", func(t *testing.T) {
		_, err := repo.AddDocument(ctx, &core.Document{UserId: 1, Status: core.StatusPending})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestGetDocumentNotFound(t *testing.T) {
	repo := setupDocumentRepository(t)

	_, err := repo.GetDocument(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDocumentsByUser(t *testing.T) {
	repo := setupDocumentRepository(t)
	ctx := context.Background()

	first := newPendingDocument(t, repo, 10)
	second := newPendingDocument(t, repo, 10)
	newPendingDocument(t, repo, 11) // other user

	docs, err := repo.GetDocumentsByUser(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.Id, docs[0].Id)
	assert.Equal(t, second.Id, docs[1].Id)

	empty, err := repo.GetDocumentsByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClaimDocument(t *testing.T) {
	repo := setupDocumentRepository(t)
	ctx := context.Background()

	t.Run("claims pending document", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)

		claimed, err := repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.True(t, claimed)

		got, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, got.Status)
	})

	t.Run("second claim no-ops", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)

		claimed, err := repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := repo.ClaimDocument(ctx, 424242)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("exactly one concurrent claimer wins", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)

		const claimers = 8
		var wg sync.WaitGroup
		wins := make(chan bool, claimers)

		for i := 0; i < claimers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := repo.ClaimDocument(ctx, doc.Id)
				assert.NoError(t, err)
				wins <- claimed
			}()
		}
		wg.Wait()
		close(wins)

		winners := 0
		for claimed := range wins {
			if claimed {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestSetDocumentStatus(t *testing.T) {
	repo := setupDocumentRepository(t)
	ctx := context.Background()

	t.Run("processing to processed", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		_, err := repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)

		require.NoError(t, repo.SetDocumentStatus(ctx, doc.Id, core.StatusProcessed, ""))

		got, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessed, got.Status)
		assert.Empty(t, got.ErrorMessage)
	})

	t.Run("processing to failed persists truncated error", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		_, err := repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)

		long := make([]byte, 400)
		for i := range long {
			long[i] = 'x'
		}
		require.NoError(t, repo.SetDocumentStatus(ctx, doc.Id, core.StatusFailed, string(long)))

		got, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusFailed, got.Status)
		assert.Len(t, got.ErrorMessage, core.MaxErrorMessageLen)
	})

	t.Run("pending straight to processed rejected", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		err := repo.SetDocumentStatus(ctx, doc.Id, core.StatusProcessed, "")
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		doc := newPendingDocument(t, repo, 1)
		_, err := repo.ClaimDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.NoError(t, repo.SetDocumentStatus(ctx, doc.Id, core.StatusFailed, "boom"))

		err = repo.SetDocumentStatus(ctx, doc.Id, core.StatusProcessing, "")
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})
}

func TestDeleteDocument(t *testing.T) {
	repo := setupDocumentRepository(t)
	ctx := context.Background()

	doc := newPendingDocument(t, repo, 5)
	require.NoError(t, repo.DeleteDocument(ctx, doc.Id))

	_, err := repo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	docs, err := repo.GetDocumentsByUser(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.ErrorIs(t, repo.DeleteDocument(ctx, doc.Id), storage.ErrNotFound)
}
