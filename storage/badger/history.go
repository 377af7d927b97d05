package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
// Records are keyed by (user, timestamp, id) so a prefix scan yields one
// user's history in chronological order.
type HistoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(backend *Backend) (*HistoryRepository, error) {
	idSeq, err := backend.GetSequence(historyIDSeq)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *HistoryRepository) Close() error {
	return r.idSeq.Release()
}

// AppendQARecord appends one exchange to the history, setting the
// record's ID and AskedAt in place.
func (r *HistoryRepository) AppendQARecord(ctx context.Context, record *core.QARecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		record.Id = core.ID(nextID)

		if record.AskedAt.IsZero() {
			record.AskedAt = time.Now().UTC().Truncate(time.Microsecond)
		}

		key := makeHistoryKey(record.UserId, record.AskedAt.UnixMicro(), record.Id)
		if err := tx.Set(key, storage.MarshalQARecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentQARecords retrieves the N most recent records for a user,
// most recent first.
func (r *HistoryRepository) RecentQARecords(ctx context.Context, userID core.UserID, limit int) ([]*core.QARecord, error) {
	if limit <= 0 {
		return []*core.QARecord{}, nil
	}

	results := make([]*core.QARecord, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialHistoryKey(userID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// In reverse mode iteration starts at the last key under the
		// prefix, reached by seeking to prefix+0xff.
		seek := append(append([]byte{}, prefix...), 0xff)
		for iter.Seek(seek); iter.Valid() && len(results) < limit; iter.Next() {
			var record *core.QARecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalQARecord(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}
