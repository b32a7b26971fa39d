package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"invoicepipe/internal/config"
	"invoicepipe/internal/port"
)

var errNoPublicURL = errors.New("local store has no public base url")

// Store keeps uploaded PDFs on disk under {dir}/{bucket}/{key}.
type Store struct {
	dir     string
	baseURL string
}

var _ port.ObjectStorage = (*Store)(nil)

// NewStore creates the root directory if needed.
func NewStore(cfg *config.StorageConfig) (*Store, error) {
	dir, err := filepath.Abs(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("resolving local dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
}

// Dir returns the absolute root directory, for serving files over HTTP.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(bucket, key string) (string, error) {
	p := filepath.Join(s.dir, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("key %q escapes storage root", key)
	}
	return p, nil
}

func (s *Store) publicURL(bucket, key string) string {
	return s.baseURL + "/" + url.PathEscape(bucket) + "/" + (&url.URL{Path: key}).EscapedPath()
}

func (s *Store) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	p, err := s.path(input.Bucket, input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	if _, err := io.Copy(tmp, input.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload close: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload rename: %w", err)
	}

	location := "file://" + filepath.ToSlash(p)
	if s.baseURL != "" {
		location = s.publicURL(input.Bucket, input.Key)
	}
	return &port.UploadOutput{Location: location, Path: p}, nil
}

func (s *Store) Download(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("local download %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Delete removes the file. A missing file is not an error.
func (s *Store) Delete(_ context.Context, bucket, key string) error {
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}

// GetPresignedURL returns the public URL of the file. Expiry is ignored.
func (s *Store) GetPresignedURL(_ context.Context, bucket, key string, _ int64) (string, error) {
	if s.baseURL == "" {
		return "", errNoPublicURL
	}
	if _, err := s.path(bucket, key); err != nil {
		return "", err
	}
	return s.publicURL(bucket, key), nil
}
