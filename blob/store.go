package blob

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrEmptyName is returned when a blob is saved without a name.
	ErrEmptyName = errors.New("blob name must not be empty")

	// ErrNotFound is returned when no blob exists for a locator.
	ErrNotFound = errors.New("blob not found")
)

// Store persists raw document payloads.
//
// Save returns an opaque locator. Callers keep the locator on the
// document record and treat it as the only handle to the payload.
type Store interface {
	// Save writes the payload under a name derived from filename and
	// returns its locator.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)

	// Open returns a reader for the payload behind a locator.
	// Returns ErrNotFound if the locator doesn't resolve.
	Open(ctx context.Context, locator string) (io.ReadCloser, error)

	// Delete removes the payload behind a locator. Deleting a locator
	// that doesn't resolve is not an error.
	Delete(ctx context.Context, locator string) error
}
