package storage

import (
	"context"
	"time"

	"github.com/poiesic/docqa/core"
)

// DocumentRepository provides operations for managing document metadata.
type DocumentRepository interface {
	// AddDocument adds a document record to storage.
	// For documents with ID=0, generates a new ID from sequence.
	// Sets CreatedAt/UpdatedAt timestamps if not already set.
	// Returns the document with the generated ID and timestamps populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentsByUser retrieves all documents owned by a user,
	// ordered by creation time ascending.
	GetDocumentsByUser(ctx context.Context, userID core.UserID) ([]*core.Document, error)

	// ClaimDocument performs the pending -> processing transition atomically.
	// Returns true if this caller won the claim. Returns false without error
	// when the document is no longer pending, so concurrent duplicate
	// triggers observe a non-pending status and no-op.
	// Returns ErrNotFound if the document doesn't exist.
	ClaimDocument(ctx context.Context, id core.ID) (bool, error)

	// SetDocumentStatus moves a document to the given status, persisting
	// errMsg (truncated to core.MaxErrorMessageLen) when the status is
	// failed. Returns core.ErrInvalidTransition if the state machine does
	// not allow the step, and ErrNotFound if the document doesn't exist.
	SetDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus, errMsg string) error

	// DeleteDocument removes a document record by ID.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// Close releases resources held by the repository.
	Close() error
}

// HistoryRepository provides append-only storage for question/answer records.
type HistoryRepository interface {
	// AppendQARecord appends one exchange to the history.
	// The record is updated in place: its ID is generated and AskedAt
	// is set if not already set.
	AppendQARecord(ctx context.Context, record *core.QARecord) error

	// RecentQARecords retrieves the N most recent records for a user,
	// most recent first.
	RecentQARecords(ctx context.Context, userID core.UserID, limit int) ([]*core.QARecord, error)

	// Close releases resources held by the repository.
	Close() error
}

// AnswerCache maps cache keys to previously generated answers with a TTL.
// Entries are last-writer-wins; reads and writes carry no transactional
// coupling to history writes.
type AnswerCache interface {
	// Get returns the cached answer for the key.
	// The second return value is false on a miss or an expired entry.
	Get(ctx context.Context, key core.ID) (string, bool, error)

	// Set stores the answer under the key with the given TTL.
	Set(ctx context.Context, key core.ID, answer string, ttl time.Duration) error
}
