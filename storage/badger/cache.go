package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// AnswerCache implements storage.AnswerCache on BadgerDB's native TTL
// entries. Expired entries surface as misses; badger reclaims them on
// compaction.
type AnswerCache struct {
	backend *Backend
}

var _ storage.AnswerCache = (*AnswerCache)(nil)

// NewAnswerCache creates a new AnswerCache.
func NewAnswerCache(backend *Backend) *AnswerCache {
	return &AnswerCache{backend: backend}
}

// Get returns the cached answer for the key, or a miss for absent or
// expired entries.
func (c *AnswerCache) Get(ctx context.Context, key core.ID) (string, bool, error) {
	var answer string
	found := false

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			answer = string(val)
			found = true
			return nil
		})
	}, false)

	return answer, found, err
}

// Set stores the answer under the key with the given TTL.
// Last writer wins.
func (c *AnswerCache) Set(ctx context.Context, key core.ID, answer string, ttl time.Duration) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeCacheKey(key), []byte(answer)).WithTTL(ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
