package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ai-resume-saas/internal/shared/storage/object"
	"ai-resume-saas/internal/shared/util"
)

// PathPrefix is where the router serves local objects.
const PathPrefix = "/files/"

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local object store rooted at baseDir. URLs are built from baseURL.
func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.baseDir }

// Put writes the reader to disk under folder.
func (s *Store) Put(ctx context.Context, folder, name, contentType string, r io.Reader) (object.Object, error) {
	sanitizedName, err := util.SanitizeFileName(name)
	if err != nil {
		return object.Object{}, fmt.Errorf("sanitize file name: %w", err)
	}
	key, err := cleanKey(path.Join(folder, sanitizedName))
	if err != nil {
		return object.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return object.Object{}, fmt.Errorf("write body: %w", err)
	}

	return object.Object{
		Key:         key,
		URL:         s.baseURL + PathPrefix + escapePath(key),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key")
	}
	return clean, nil
}

func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ object.ObjectStore = (*Store)(nil)
