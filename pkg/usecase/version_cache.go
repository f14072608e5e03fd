package usecase

import (
	"context"
	"maps"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// VersionCache remembers the last processed release tag of every repository. It is not
// safe for concurrent use; the pipeline is its only writer.
type VersionCache struct {
	store   interfaces.CacheStore
	entries map[types.RepositoryID]string
}

// NewVersionCache creates an empty cache backed by store. Call Load before use.
func NewVersionCache(store interfaces.CacheStore) *VersionCache {
	return &VersionCache{
		store:   store,
		entries: make(map[types.RepositoryID]string),
	}
}

// Load replaces the in-memory entries with the stored snapshot. Read failures never
// propagate: a missing or unreadable store starts an empty cache.
func (x *VersionCache) Load(ctx context.Context) {
	logger := ctxlog.From(ctx)

	snapshot, err := x.store.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load version cache, starting empty", "error", err)
		x.entries = make(map[types.RepositoryID]string)
		return
	}

	x.entries = make(map[types.RepositoryID]string, len(snapshot))
	for repo, tag := range snapshot {
		if tag == "" {
			continue
		}
		x.entries[repo] = tag
	}

	logger.Debug("Loaded version cache", "entries", len(x.entries))
}

// Has reports whether tag is the recorded tag of repo. Tags are compared verbatim.
func (x *VersionCache) Has(repo types.RepositoryID, tag string) bool {
	recorded, ok := x.entries[repo]
	return ok && recorded == tag
}

// Get returns the recorded tag of repo
func (x *VersionCache) Get(repo types.RepositoryID) (string, bool) {
	tag, ok := x.entries[repo]
	return tag, ok
}

// Record overwrites the tag of repo
func (x *VersionCache) Record(repo types.RepositoryID, tag string) {
	x.entries[repo] = tag
}

// Flush writes all entries to the store. On failure the in-memory entries stay
// authoritative for the rest of the run.
func (x *VersionCache) Flush(ctx context.Context) error {
	if err := x.store.Save(ctx, x.Snapshot()); err != nil {
		return goerr.Wrap(err, "failed to flush version cache",
			goerr.V("entries", len(x.entries)),
			goerr.T(types.ErrTagPersistence),
		)
	}
	return nil
}

// Snapshot returns a copy of the entries
func (x *VersionCache) Snapshot() map[types.RepositoryID]string {
	return maps.Clone(x.entries)
}
