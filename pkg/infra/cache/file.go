// Package cache implements the durable backends of the version cache.
package cache

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var _ interfaces.CacheStore = (*FileStore)(nil)

// FileStore keeps the snapshot in a local JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store for path. The file is created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file. A missing file is an empty snapshot.
func (x *FileStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	data, err := os.ReadFile(x.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[types.RepositoryID]string{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cache file",
			goerr.V("path", x.path),
			goerr.T(types.ErrTagPersistence),
		)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode cache file", goerr.V("path", x.path))
	}
	return snapshot, nil
}

// Save replaces the file atomically so a crash never leaves a truncated document
func (x *FileStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(x.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create cache directory",
				goerr.V("dir", dir),
				goerr.T(types.ErrTagPersistence),
			)
		}
	}

	if err := atomic.WriteFile(x.path, bytes.NewReader(data)); err != nil {
		return goerr.Wrap(err, "failed to write cache file",
			goerr.V("path", x.path),
			goerr.T(types.ErrTagPersistence),
		)
	}
	return nil
}
