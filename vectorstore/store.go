package vectorstore

import (
	"context"

	"github.com/poiesic/docqa/core"
)

// Store is the low-level vector collection backend.
// Implementations must be thread-safe; serialization of destructive
// reconciliation against concurrent readers is the Manager's job.
type Store interface {
	// HasCollection reports whether a collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// Collection returns the collection's configuration.
	// Returns ErrNoCollection if it doesn't exist.
	Collection(ctx context.Context, name string) (*core.VectorCollection, error)

	// CreateCollection creates an empty collection with the given dimension.
	// Returns ErrCollectionExists if the name is already taken.
	CreateCollection(ctx context.Context, name string, dimension int) error

	// DropCollection removes a collection and all vectors it holds.
	// Dropping a collection that doesn't exist is not an error.
	DropCollection(ctx context.Context, name string) error

	// Insert adds chunk records to the collection.
	// Every vector must match the collection's configured dimension;
	// a mismatch returns ErrDimensionMismatch and inserts nothing.
	Insert(ctx context.Context, name string, chunks []*core.ChunkRecord) error

	// Search returns the k nearest chunks to the query vector, ranked by
	// similarity (highest first). A missing collection yields an empty
	// result, not an error.
	Search(ctx context.Context, name string, vector []float32, k int) ([]*core.SearchResult, error)

	// DeleteByDocument removes all chunks tagged with the document ID.
	// Returns the number of chunks removed. A missing collection removes
	// nothing and is not an error.
	DeleteByDocument(ctx context.Context, name string, documentID core.ID) (int, error)
}
