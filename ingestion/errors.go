package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrManagerRequired is returned when a collection manager is not provided.
	ErrManagerRequired = errors.New("collection manager required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidChunking is returned when the chunk size or overlap is
	// out of range.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

	// ErrUnsupportedFileType is returned for documents that are not
	// plain-text formats.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoContent is returned when chunking a document yields nothing.
	ErrNoContent = errors.New("document produced no chunks")

	// ErrNoUsableVectors is returned when every chunk of a document
	// failed to embed.
	ErrNoUsableVectors = errors.New("no chunks could be embedded")
)
