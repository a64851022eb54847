package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps uploaded files and hands back a public URL for each.
type FileStore interface {
	Save(ctx context.Context, key string, contentType string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// UploadsRoute is where LocalFileStore files are served from.
const UploadsRoute = "/uploads"

type LocalFileStore struct {
	dir     string
	baseURL string
}

func NewLocalFileStore(dir string, baseURL string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &LocalFileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalFileStore) Dir() string {
	return s.dir
}

func (s *LocalFileStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalFileStore) Save(_ context.Context, key string, _ string, r io.Reader) (string, error) {
	localPath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", err
	}
	file, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(localPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return s.baseURL + UploadsRoute + "/" + strings.TrimPrefix(key, "/"), nil
}

func (s *LocalFileStore) Delete(_ context.Context, key string) error {
	localPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FakeFileStore keeps files in memory for tests.
type FakeFileStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{Files: make(map[string][]byte)}
}

func (f *FakeFileStore) Save(_ context.Context, key string, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[key] = data
	return "https://files.test/" + key, nil
}

func (f *FakeFileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Files, key)
	return nil
}
