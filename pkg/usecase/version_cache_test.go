package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/m-mizutani/relwatch/pkg/usecase"
)

func TestVersionCache_HasAfterRecord(t *testing.T) {
	ctx := context.Background()
	cache := usecase.NewVersionCache(&MockCacheStore{})
	cache.Load(ctx)

	pairs := []struct {
		repo types.RepositoryID
		tag  string
	}{
		{repo: "a/b", tag: "v1.0"},
		{repo: "a/b", tag: "v1.0"},
		{repo: "c/d", tag: "release-2024-01-01"},
		{repo: "e/f", tag: ""},
		{repo: "a/b", tag: "V1.0"},
	}

	for _, p := range pairs {
		cache.Record(p.repo, p.tag)
		gt.Value(t, cache.Has(p.repo, p.tag)).Equal(true)
	}
}

func TestVersionCache_ExactMatch(t *testing.T) {
	ctx := context.Background()
	cache := usecase.NewVersionCache(&MockCacheStore{
		data: map[types.RepositoryID]string{"a/b": "v1.0"},
	})
	cache.Load(ctx)

	gt.Value(t, cache.Has("a/b", "v1.0")).Equal(true)
	gt.Value(t, cache.Has("a/b", "1.0")).Equal(false)
	gt.Value(t, cache.Has("a/b", "v1.0.0")).Equal(false)
	gt.Value(t, cache.Has("a/b", "V1.0")).Equal(false)
	gt.Value(t, cache.Has("x/y", "v1.0")).Equal(false)
}

func TestVersionCache_RecordOverwrites(t *testing.T) {
	ctx := context.Background()
	store := &MockCacheStore{}
	cache := usecase.NewVersionCache(store)
	cache.Load(ctx)

	cache.Record("a/b", "v1.0")
	cache.Record("a/b", "v2.0")

	gt.Value(t, cache.Has("a/b", "v2.0")).Equal(true)
	gt.Value(t, cache.Has("a/b", "v1.0")).Equal(false)

	gt.NoError(t, cache.Flush(ctx))
	gt.Value(t, store.data).Equal(map[types.RepositoryID]string{"a/b": "v2.0"})
}

func TestVersionCache_LoadFailureYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	cache := usecase.NewVersionCache(&MockCacheStore{
		loadErr: goerr.New("broken", goerr.T(types.ErrTagPersistence)),
	})

	cache.Load(ctx)

	gt.Number(t, len(cache.Snapshot())).Equal(0)
	cache.Record("a/b", "v1.0")
	gt.Value(t, cache.Has("a/b", "v1.0")).Equal(true)
}

func TestVersionCache_LoadDropsEmptyTags(t *testing.T) {
	ctx := context.Background()
	cache := usecase.NewVersionCache(&MockCacheStore{
		data: map[types.RepositoryID]string{"a/b": "", "c/d": "v1"},
	})
	cache.Load(ctx)

	_, ok := cache.Get("a/b")
	gt.Value(t, ok).Equal(false)
	tag, ok := cache.Get("c/d")
	gt.Value(t, ok).Equal(true)
	gt.Value(t, tag).Equal("v1")
}

func TestVersionCache_FlushFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &MockCacheStore{saveErr: errors.New("disk full")}
	cache := usecase.NewVersionCache(store)
	cache.Load(ctx)

	cache.Record("a/b", "v1.0")
	err := cache.Flush(ctx)
	gt.Error(t, err)
	gt.Value(t, goerr.HasTag(err, types.ErrTagPersistence)).Equal(true)

	gt.Value(t, cache.Has("a/b", "v1.0")).Equal(true)
	gt.Number(t, store.saves).Equal(1)
}

func TestVersionCache_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	cache := usecase.NewVersionCache(&MockCacheStore{})
	cache.Load(ctx)
	cache.Record("a/b", "v1.0")

	snapshot := cache.Snapshot()
	snapshot["a/b"] = "tampered"

	gt.Value(t, cache.Has("a/b", "v1.0")).Equal(true)
}
