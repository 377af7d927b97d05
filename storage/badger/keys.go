package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docqa/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentUserPrefix = "docusr"
	documentIDSeq      = "docrecseq"
	historyPrefix      = "qarec"
	historyIDSeq       = "qarecseq"
	cachePrefix        = "qacache"
	collectionPrefix   = "colmeta"
	chunkPrefix        = "colchk"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentUserKey generates a composite key for the per-user index.
// Format: prefix:userID:documentID, fixed-width BigEndian so lexicographic
// sort matches numeric order.
func makeDocumentUserKey(userID core.UserID, id core.ID) []byte {
	prefix := []byte(documentUserPrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentUserKey generates a prefix for scanning one user's documents.
func makePartialDocumentUserKey(userID core.UserID) []byte {
	prefix := []byte(documentUserPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	return buf
}

// makeHistoryKey generates a composite key for a history record.
// Format: prefix:userID:timestamp:id, BigEndian so iteration order is
// chronological within a user.
func makeHistoryKey(userID core.UserID, timestampMicro int64, id core.ID) []byte {
	prefix := []byte(historyPrefix + ":")
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestampMicro))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialHistoryKey generates a prefix for scanning one user's history.
func makePartialHistoryKey(userID core.UserID) []byte {
	prefix := []byte(historyPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	return buf
}

// makeCacheKey generates a key for a cached answer.
func makeCacheKey(key core.ID) []byte {
	prefix := []byte(cachePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}

// makeCollectionKey generates a key for a collection's configuration record.
func makeCollectionKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, name))
}

// makeChunkKey generates a key for one chunk inside a collection.
// Format: prefix:collection:chunkID. Collection names never contain ':'.
func makeChunkKey(collection string, id core.ID) []byte {
	prefix := []byte(chunkPrefix + ":" + collection + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkScanPrefix generates the prefix covering all chunks of a collection.
func makeChunkScanPrefix(collection string) []byte {
	return []byte(chunkPrefix + ":" + collection + ":")
}
