package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on disk below Dir; BaseURL is where Dir is served.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// resolve maps an object path to a file below Dir, refusing anything that
// would escape it.
func (s *LocalStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(clean))
	root := filepath.Clean(s.Dir) + string(os.PathSeparator)
	if !strings.HasPrefix(full, root) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return full, nil
}

func (s *LocalStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return objectPath, nil
}

func (s *LocalStore) PublicURL(objectPath string) string {
	segments := strings.Split(strings.TrimPrefix(objectPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.BaseURL + "/uploads/" + strings.Join(segments, "/")
}

func (s *LocalStore) Delete(ctx context.Context, objectPath string) error {
	full, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
