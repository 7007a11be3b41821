package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tasket/tasket-server/internal/constants"
)

// LocalStore keeps attachment files in a single uploads directory served
// under /uploads.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute uploads directory, for static file serving.
func (s *LocalStore) Root() string {
	return s.root
}

// Put writes the file under the uploads root and returns its /uploads URL.
func (s *LocalStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	filename := filepath.Base(key)
	f, err := os.Create(filepath.Join(s.root, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return constants.LocalUploadPrefix + filename, nil
}

// Delete removes the file referenced by a /uploads URL. Only the basename is
// used, and the resolved path must stay inside the uploads root; anything
// else, including an already-missing file, is a no-op.
func (s *LocalStore) Delete(rawURL string) error {
	filename := filepath.Base(rawURL)
	full := filepath.Join(s.root, filename)
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return nil
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", full, err)
	}
	return nil
}

// Exists reports whether the file referenced by a /uploads URL is present.
func (s *LocalStore) Exists(rawURL string) bool {
	_, err := os.Stat(filepath.Join(s.root, filepath.Base(rawURL)))
	return err == nil
}
