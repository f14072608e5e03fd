package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

type fetcher struct {
	source interfaces.ReleaseSource
}

// NewFetcher creates a ReleaseFetcher that returns the newest release reported by source
func NewFetcher(source interfaces.ReleaseSource) interfaces.ReleaseFetcher {
	return &fetcher{source: source}
}

// Fetch returns the first release of the list. The source already orders releases newest
// first, so no sorting is done here. Errors are not retried; the next scheduled run will
// pick the repository up again.
func (x *fetcher) Fetch(ctx context.Context, repo types.RepositoryID) *model.ReleaseInfo {
	logger := ctxlog.From(ctx)

	releases, err := x.source.ListReleases(ctx, repo)
	if err != nil {
		logger.Warn("Failed to fetch releases", "repository", repo, "error", err)
		return nil
	}

	if len(releases) == 0 || releases[0] == nil {
		logger.Info("No release found", "repository", repo)
		return nil
	}

	release := releases[0]
	logger.Debug("Fetched latest release",
		"repository", repo,
		"tag", release.Tag,
		"url", release.URL,
	)

	return release
}
