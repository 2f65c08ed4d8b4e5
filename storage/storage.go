// Package storage persists encoded vector stores as opaque blobs under a
// collection name. Ingestion overwrites a collection's blob whole; there is
// no incremental update.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound means the collection has never been ingested.
var ErrNotFound = errors.New("collection not found")

type Blobs interface {
	Put(ctx context.Context, collection string, data []byte) error
	Get(ctx context.Context, collection string) ([]byte, error)
}

// FileStore keeps one file per collection under a base directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(_ context.Context, collection string, data []byte) error {
	path, err := s.path(collection)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, collection string) ([]byte, error) {
	path, err := s.path(collection)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, collection)
		}
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	return data, nil
}

func (s *FileStore) path(collection string) (string, error) {
	if collection == "" || strings.ContainsAny(collection, `/\`) {
		return "", fmt.Errorf("invalid collection name: %q", collection)
	}
	return filepath.Join(s.dir, collection+".store"), nil
}

var _ Blobs = (*FileStore)(nil)
