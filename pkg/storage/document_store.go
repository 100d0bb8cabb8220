package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore reads and replaces whole documents addressed by a path.
type DocumentStore interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path string, content string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// FileStore keeps documents on the local filesystem below Root.
type FileStore struct {
	Root string
}

var _ DocumentStore = (*FileStore)(nil)

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

func (s *FileStore) resolve(path string) string {
	if s.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

func (s *FileStore) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(s.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	return string(b), nil
}

// Write replaces the document atomically: the content goes to a temp file in the
// same directory which is then renamed over the target.
func (s *FileStore) Write(ctx context.Context, path string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.resolve(path)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(full)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
