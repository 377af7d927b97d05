package vectorstore

import "errors"

var (
	// ErrStoreRequired is returned when a Manager is built without a Store.
	ErrStoreRequired = errors.New("vector store required")

	// ErrNoCollection indicates the requested collection doesn't exist.
	ErrNoCollection = errors.New("collection does not exist")

	// ErrCollectionExists indicates a create for a name already in use.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrDimensionMismatch indicates a vector whose length disagrees with
	// the collection's configured dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidDimension indicates a non-positive dimension.
	ErrInvalidDimension = errors.New("dimension must be positive")
)
