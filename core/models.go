package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// UserID identifies the owner of documents, collections, and history records.
type UserID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentStatus tracks a document through the ingestion state machine.
type DocumentStatus int

const (
	// StatusPending means the document is recorded but not yet picked up.
	StatusPending DocumentStatus = iota + 1
	// StatusProcessing means an ingestion worker has claimed the document.
	StatusProcessing
	// StatusProcessed means all vectors for the document are durably indexed.
	StatusProcessed
	// StatusFailed means ingestion hit an unrecoverable error.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s DocumentStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusProcessed:
		return "processed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the status admits no further transitions.
// There is no automatic recovery from processed or failed.
func (s DocumentStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal step
// of the ingestion state machine:
//
//	pending -> processing -> {processed, failed}
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessed || next == StatusFailed
	default:
		return false
	}
}

// Document is the metadata record for one uploaded document.
// The document body lives in blob storage under BlobLocator;
// its indexed chunks live in the owner's vector collection.
type Document struct {
	Id             ID
	UserId         UserID
	Filename       string // original filename as uploaded
	BlobLocator    string // opaque to the core; resolved by the blob store
	CollectionName string
	Status         DocumentStatus
	ErrorMessage   string // set if and only if Status == StatusFailed
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ChunkRecord is one indexed slice of a document: the unit of
// embedding, storage, and retrieval.
type ChunkRecord struct {
	Id         ID
	DocumentId ID
	Content    string
	Vector     []float32
}

// VectorCollection is the configuration of one user's logical vector
// collection. The configured dimension must equal the dimension of every
// vector the collection holds; a mismatch triggers reconciliation.
type VectorCollection struct {
	Name      string
	Dimension int
	CreatedAt time.Time
}

// QARecord is one question/answer exchange. History is append-only.
type QARecord struct {
	Id       ID
	UserId   UserID
	Question string
	Answer   string
	AskedAt  time.Time
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk *ChunkRecord
	Score float32
}

// CollectionNameForUser derives the name of a user's vector collection.
// Every user has at most one logical collection.
func CollectionNameForUser(userID UserID) string {
	return fmt.Sprintf("docs_user_%d", userID)
}
