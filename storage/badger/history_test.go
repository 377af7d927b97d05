package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistoryRepository(t *testing.T) storage.HistoryRepository {
	t.Helper()

	docs, repo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		docs.Close()
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestAppendQARecord(t *testing.T) {
	repo := setupHistoryRepository(t)
	ctx := context.Background()

	rec := &core.QARecord{
		UserId:   1,
		Question: "what is in the report?",
		Answer:   "quarterly figures",
	}
	require.NoError(t, repo.AppendQARecord(ctx, rec))

	assert.NotZero(t, rec.Id)
	assert.False(t, rec.AskedAt.IsZero())
}

func TestRecentQARecords(t *testing.T) {
	repo := setupHistoryRepository(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := repo.AppendQARecord(ctx, &core.QARecord{
			UserId:   7,
			Question: "q",
			Answer:   "a",
			AskedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.AppendQARecord(ctx, &core.QARecord{
		UserId:   8,
		Question: "other user",
		Answer:   "a",
		AskedAt:  base.Add(time.Hour),
	}))

	t.Run("most recent first", func(t *testing.T) {
		records, err := repo.RecentQARecords(ctx, 7, 3)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, base.Add(4*time.Minute), records[0].AskedAt)
		assert.Equal(t, base.Add(3*time.Minute), records[1].AskedAt)
		assert.Equal(t, base.Add(2*time.Minute), records[2].AskedAt)
	})

	t.Run("limit beyond available", func(t *testing.T) {
		records, err := repo.RecentQARecords(ctx, 7, 100)
		require.NoError(t, err)
		assert.Len(t, records, 5)
	})

	t.Run("no records for unknown user", func(t *testing.T) {
		records, err := repo.RecentQARecords(ctx, 99, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
