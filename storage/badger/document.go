package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument adds a document record to storage.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if doc.Id == 0 {
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
			doc.Id = core.ID(nextID)
		}

		if doc.CreatedAt.IsZero() {
			// Truncated to what the serialized form preserves.
			doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
		}
		doc.UpdatedAt = doc.CreatedAt

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeDocumentUserKey(doc.UserId, doc.Id), storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, id)
		return err
	}, false)
	return result, err
}

// readDocument loads and unmarshals one document inside a transaction.
// Returns storage.ErrNotFound if the key is absent.
func readDocument(tx *badger.Txn, id core.ID) (*core.Document, error) {
	item, err := tx.Get(makeDocumentKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}

// GetDocumentsByUser retrieves all documents owned by a user, ordered by
// creation (ID) ascending.
func (r *DocumentRepository) GetDocumentsByUser(ctx context.Context, userID core.UserID) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentUserKey(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			doc, err := readDocument(tx, id)
			if errors.Is(err, storage.ErrNotFound) {
				// Index entry without a record; skip rather than fail the listing.
				continue
			}
			if err != nil {
				return err
			}
			results = append(results, doc)
		}
		return nil
	}, false)
	return results, err
}

// ClaimDocument performs the pending -> processing transition atomically.
// Exactly one concurrent caller wins; the rest observe a non-pending
// status (or lose the write race) and get false without error.
func (r *DocumentRepository) ClaimDocument(ctx context.Context, id core.ID) (bool, error) {
	claimed := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, id)
		if err != nil {
			return err
		}

		if doc.Status != core.StatusPending {
			return nil
		}

		doc.Status = core.StatusProcessing
		doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		claimed = true
		return nil
	}, true)

	// A conflicting commit means another claimer won the race.
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	return claimed, err
}

// SetDocumentStatus moves a document to the given status.
func (r *DocumentRepository) SetDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus, errMsg string) error {
	if err := core.ValidateStatus(status); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, id)
		if err != nil {
			return err
		}

		if !doc.Status.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, doc.Status, status)
		}

		doc.Status = status
		if status == core.StatusFailed {
			if errMsg == "" {
				errMsg = "ingestion failed"
			}
			doc.ErrorMessage = core.TruncateError(errMsg)
		} else {
			doc.ErrorMessage = ""
		}
		doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteDocument removes a document record and its user index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(makeDocumentUserKey(doc.UserId, doc.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeDocumentKey(doc.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
