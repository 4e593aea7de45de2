package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL segment stored files are served under.
const PublicPrefix = "uploads"

var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// FileStore keeps uploaded blobs in a local directory under generated names.
type FileStore struct {
	dir      string
	maxBytes int64
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the root directory of the store.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// MaxBytes returns the per-file size limit.
func (fs *FileStore) MaxBytes() int64 {
	return fs.maxBytes
}

// Save streams r to a new file, keeping the extension of originalName.
// It returns the public path, PublicPrefix joined with the generated name.
// A partial file is removed on error.
func (fs *FileStore) Save(originalName string, r io.Reader) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext
	full := filepath.Join(fs.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	// Read one byte past the limit to detect oversized input.
	n, err := io.Copy(f, io.LimitReader(r, fs.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("write file: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("close file: %w", closeErr)
	case n > fs.maxBytes:
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", 0, err
	}
	return path.Join(PublicPrefix, name), n, nil
}

// Remove deletes a stored file given its public path or bare stored name.
// A missing file is not an error.
func (fs *FileStore) Remove(stored string) error {
	full, err := fs.resolve(stored)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve maps a stored path to a file in Dir, refusing anything outside it.
func (fs *FileStore) resolve(stored string) (string, error) {
	name := strings.TrimPrefix(stored, PublicPrefix+"/")
	clean := filepath.Base(filepath.Clean(name))
	if clean == "." || clean == string(filepath.Separator) || clean != name {
		return "", fmt.Errorf("invalid stored file name %q", stored)
	}
	return filepath.Join(fs.dir, clean), nil
}
