package vectorstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/poiesic/docqa/core"
)

// Manager owns the logical collections, one per user, and performs
// dimension reconciliation before vectors are committed.
//
// All destructive reconciliation is serialized per collection: Ensure
// takes a write lock while Insert and Search take read locks, so a
// concurrent reader never observes a collection mid-drop-and-recreate.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a new collection manager on top of a Store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	m := &Manager{
		store:  store,
		logger: slog.Default().With("component", "vectorstore-manager"),
		locks:  map[string]*sync.RWMutex{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// lockFor returns the lock guarding one collection, creating it on first use.
func (m *Manager) lockFor(name string) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[name]
	if !ok {
		lock = &sync.RWMutex{}
		m.locks[name] = lock
	}
	return lock
}

// Ensure reconciles the user's collection against the measured dimension
// and returns the collection name.
//
// If no collection exists, one is created with dimension dActual. If a
// collection exists with a matching dimension, it is reused untouched.
// If the dimensions disagree, the collection is dropped and recreated with
// dActual; its previous contents are lost. The most recently measured
// dimension always wins.
func (m *Manager) Ensure(ctx context.Context, userID core.UserID, dActual int) (string, error) {
	if dActual <= 0 {
		return "", ErrInvalidDimension
	}

	name := core.CollectionNameForUser(userID)
	lock := m.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.store.Collection(ctx, name)
	switch {
	case errors.Is(err, ErrNoCollection):
		m.logger.Info("creating collection", "collection", name, "dimension", dActual)
		return name, m.createLocked(ctx, name, dActual)
	case err != nil:
		return "", err
	}

	if existing.Dimension == dActual {
		return name, nil
	}

	// Data-losing rebuild: a collection may never hold mixed-dimension
	// vectors, and there is no in-place migration.
	m.logger.Warn("dimension mismatch, rebuilding collection",
		"collection", name,
		"configured", existing.Dimension,
		"actual", dActual)

	if err := m.store.DropCollection(ctx, name); err != nil {
		return "", err
	}
	return name, m.createLocked(ctx, name, dActual)
}

func (m *Manager) createLocked(ctx context.Context, name string, dimension int) error {
	err := m.store.CreateCollection(ctx, name, dimension)
	if errors.Is(err, ErrCollectionExists) {
		// Lost a race with another process sharing the store; the
		// per-collection lock only covers this Manager.
		return nil
	}
	return err
}

// HasCollection reports whether the user's collection exists.
func (m *Manager) HasCollection(ctx context.Context, userID core.UserID) (bool, error) {
	return m.store.HasCollection(ctx, core.CollectionNameForUser(userID))
}

// Insert adds chunk records to the user's collection.
// The collection must already exist (callers Ensure first).
func (m *Manager) Insert(ctx context.Context, userID core.UserID, chunks []*core.ChunkRecord) error {
	name := core.CollectionNameForUser(userID)
	lock := m.lockFor(name)
	lock.RLock()
	defer lock.RUnlock()

	return m.store.Insert(ctx, name, chunks)
}

// Search returns the k nearest chunks to the query vector, ranked by
// similarity. A user without a collection gets an empty result, not an
// error; the query pipeline uses this to detect "no documents yet".
func (m *Manager) Search(ctx context.Context, userID core.UserID, vector []float32, k int) ([]*core.SearchResult, error) {
	name := core.CollectionNameForUser(userID)
	lock := m.lockFor(name)
	lock.RLock()
	defer lock.RUnlock()

	return m.store.Search(ctx, name, vector, k)
}

// Drop removes the user's collection and everything in it.
func (m *Manager) Drop(ctx context.Context, userID core.UserID) error {
	name := core.CollectionNameForUser(userID)
	lock := m.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return m.store.DropCollection(ctx, name)
}

// DeleteDocumentChunks removes all chunks of one document from the user's
// collection and returns how many were removed.
func (m *Manager) DeleteDocumentChunks(ctx context.Context, userID core.UserID, documentID core.ID) (int, error) {
	name := core.CollectionNameForUser(userID)
	lock := m.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return m.store.DeleteByDocument(ctx, name, documentID)
}
