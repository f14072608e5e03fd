// Package dryrun provides sinks and a cache store that only log, for trying a watch list
// without side effects.
package dryrun

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var (
	_ interfaces.ChatNotifier = (*ChatNotifier)(nil)
	_ interfaces.IssueTracker = (*IssueTracker)(nil)
	_ interfaces.CacheStore   = (*CacheStore)(nil)
)

// ChatNotifier logs the message instead of sending it
type ChatNotifier struct{}

func (x *ChatNotifier) Notify(ctx context.Context, text string) error {
	ctxlog.From(ctx).Info("[dry-run] chat notification", "text", text)
	return nil
}

// IssueTracker logs the issue instead of creating it. It returns an empty URL so chat
// messages show no issue link.
type IssueTracker struct{}

func (x *IssueTracker) CreateIssue(ctx context.Context, repo types.RepositoryID, req *model.IssueRequest) (string, error) {
	ctxlog.From(ctx).Info("[dry-run] tracking issue",
		"repository", repo,
		"title", req.Title,
		"body", req.Body,
		"assignees", req.Assignees,
	)
	return "", nil
}

// CacheStore reads through to the real store and discards writes
type CacheStore struct {
	Base interfaces.CacheStore
}

func (x *CacheStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	return x.Base.Load(ctx)
}

func (x *CacheStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	ctxlog.From(ctx).Debug("[dry-run] cache flush skipped", "entries", len(snapshot))
	return nil
}
