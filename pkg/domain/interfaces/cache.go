package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// CacheStore is the durable backing of the version cache. It stores the last processed
// tag per repository.
type CacheStore interface {
	// Load returns the stored snapshot. A store that does not exist yet yields an empty
	// map and no error.
	Load(ctx context.Context) (map[types.RepositoryID]string, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot map[types.RepositoryID]string) error
}
