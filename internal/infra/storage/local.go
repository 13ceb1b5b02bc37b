package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

// LocalStore writes artifacts to a directory on disk. URLs point at the
// /uploads/ static route served by the HTTP server.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the bytes and returns a URL under /uploads/.
func (s *LocalStore) Save(_ context.Context, data []byte, key string) (string, error) {
	// key boleh mengandung sub-folder per user
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", &domain.StorageError{Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", &domain.StorageError{Op: "write", Err: err}
	}
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}

// Fetch opens the file behind a URL produced by Save.
func (s *LocalStore) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	const marker = "/uploads/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return nil, fmt.Errorf("not a local artifact url: %s", url)
	}
	rel := filepath.FromSlash(url[idx+len(marker):])
	clean := filepath.Clean(rel)
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("invalid artifact path: %s", rel)
	}
	return os.Open(filepath.Join(s.dir, clean))
}

// Dir exposes the root directory for static file serving.
func (s *LocalStore) Dir() string { return s.dir }
