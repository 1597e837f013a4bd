package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a stored artifact does not exist.
var ErrNotFound = errors.New("storage: file not found")

// ErrInvalidName is returned when an artifact name would escape the root
// directory.
var ErrInvalidName = errors.New("storage: invalid file name")

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements the Storage interface using local disk.
// Artifacts are written under a root directory and served back through the
// /files route, so the returned URL is the configured public base URL plus
// /files/<name>.
type LocalStorage struct {
	rootDir string
	baseURL string
}

// NewLocalStorage creates a new LocalStorage instance.
// The rootDir parameter specifies where artifacts are stored; it is created
// if it doesn't exist. If rootDir is empty, a directory under os.TempDir()
// is used. baseURL is the externally reachable base for file links.
func NewLocalStorage(rootDir, baseURL string) (*LocalStorage, error) {
	if rootDir == "" {
		rootDir = filepath.Join(os.TempDir(), "videogen")
	}

	if err := os.MkdirAll(rootDir, 0750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &LocalStorage{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// RootDir returns the storage root directory path.
func (s *LocalStorage) RootDir() string {
	return s.rootDir
}

// Provider returns "local".
func (s *LocalStorage) Provider() string {
	return "local"
}

// Put writes data to a file under the root directory and returns the URL it
// will be served from. The content type is ignored here; it is derived from
// the name when the file is served.
func (s *LocalStorage) Put(ctx context.Context, name, _ string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path) // #nosec G304 - path is confined to rootDir by resolve
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}

	return s.baseURL + "/files/" + url.PathEscape(name), nil
}

// Get reads a stored artifact by name.
// Returns ErrNotFound if no artifact with that name exists.
func (s *LocalStorage) Get(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is confined to rootDir by resolve
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// resolve maps an artifact name to a path under rootDir, rejecting names
// that contain separators or traverse upwards.
func (s *LocalStorage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.rootDir, name), nil
}
