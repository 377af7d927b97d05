package badger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/vectorstore"
)

// VectorStore implements vectorstore.Store on BadgerDB.
//
// Each collection is one configuration record plus a key range of chunk
// records. Search is a brute-force cosine-similarity scan over the
// collection's range, which is appropriate for the per-user collection
// sizes this service handles.
type VectorStore struct {
	backend *Backend
}

var _ vectorstore.Store = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{backend: backend}
}

// HasCollection reports whether a collection exists.
func (s *VectorStore) HasCollection(ctx context.Context, name string) (bool, error) {
	exists := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

// Collection returns the collection's configuration.
func (s *VectorStore) Collection(ctx context.Context, name string) (*core.VectorCollection, error) {
	var col *core.VectorCollection
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return vectorstore.ErrNoCollection
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			col, err = storage.UnmarshalCollection(val)
			return err
		})
	}, false)
	return col, err
}

// CreateCollection creates an empty collection with the given dimension.
func (s *VectorStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: %s", vectorstore.ErrCollectionExists, name)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		col := &core.VectorCollection{
			Name:      name,
			Dimension: dimension,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Set(key, storage.MarshalCollection(col)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DropCollection removes a collection and all vectors it holds.
func (s *VectorStore) DropCollection(ctx context.Context, name string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		keys, err := collectChunkKeys(tx, name, nil)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeCollectionKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Insert adds chunk records to the collection.
func (s *VectorStore) Insert(ctx context.Context, name string, chunks []*core.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return vectorstore.ErrNoCollection
		}
		if err != nil {
			return err
		}

		var col *core.VectorCollection
		if err := item.Value(func(val []byte) error {
			col, err = storage.UnmarshalCollection(val)
			return err
		}); err != nil {
			return err
		}

		for _, chunk := range chunks {
			if len(chunk.Vector) != col.Dimension {
				return fmt.Errorf("%w: collection %s expects %d, got %d",
					vectorstore.ErrDimensionMismatch, name, col.Dimension, len(chunk.Vector))
			}
		}

		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(fmt.Sprintf("%d:%s", chunk.DocumentId, chunk.Content))
			}
			if err := tx.Set(makeChunkKey(name, chunk.Id), storage.MarshalChunkRecord(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Search returns the k nearest chunks to the query vector by cosine
// similarity, highest first. Ties keep the scan order, which is fixed
// for a fixed index state.
func (s *VectorStore) Search(ctx context.Context, name string, vector []float32, k int) ([]*core.SearchResult, error) {
	if k <= 0 {
		return []*core.SearchResult{}, nil
	}

	exists, err := s.HasCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*core.SearchResult{}, nil
	}

	var results []*core.SearchResult
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			score := cosineSimilarity(vector, chunk.Vector)
			results = append(results, &core.SearchResult{Chunk: chunk, Score: score})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	if results == nil {
		results = []*core.SearchResult{}
	}
	return results, nil
}

// DeleteByDocument removes all chunks tagged with the document ID.
func (s *VectorStore) DeleteByDocument(ctx context.Context, name string, documentID core.ID) (int, error) {
	removed := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		keys, err := collectChunkKeys(tx, name, func(chunk *core.ChunkRecord) bool {
			return chunk.DocumentId == documentID
		})
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		removed = len(keys)
		return tx.Commit()
	}, true)
	return removed, err
}

// collectChunkKeys gathers chunk keys under a collection, optionally
// filtered, for deletion outside the iterator.
func collectChunkKeys(tx *badger.Txn, name string, match func(*core.ChunkRecord) bool) ([][]byte, error) {
	var keys [][]byte

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkScanPrefix(name)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		if match != nil {
			var chunk *core.ChunkRecord
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return nil, err
			}
			if !match(chunk) {
				continue
			}
		}
		keys = append(keys, item.KeyCopy(nil))
	}
	return keys, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
