package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is a Store backed by a local directory. Saved payloads get a
// timestamp prefix so repeated uploads of the same filename don't
// overwrite each other.
type Dir struct {
	root string
}

var _ Store = (*Dir)(nil)

// NewDir creates a directory-backed store rooted at root, creating the
// directory if needed.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("blob directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Dir{root: root}, nil
}

// Save writes the payload to a new file and returns its name as the
// locator.
func (d *Dir) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", ErrEmptyName
	}

	locator := fmt.Sprintf("%d_%s", time.Now().UnixNano(), base)
	f, err := os.Create(filepath.Join(d.root, locator))
	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}
	return locator, nil
}

// Open returns a reader for a previously saved payload.
func (d *Dir) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.Base(locator)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes a previously saved payload.
func (d *Dir) Delete(ctx context.Context, locator string) error {
	err := os.Remove(filepath.Join(d.root, filepath.Base(locator)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
