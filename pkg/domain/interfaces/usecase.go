package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// ReleaseFetcher retrieves the latest release of a repository
type ReleaseFetcher interface {
	// Fetch returns nil when there is no release or the source could not be reached
	Fetch(ctx context.Context, repo types.RepositoryID) *model.ReleaseInfo
}

// SeverityClassifier judges the significance of a release
type SeverityClassifier interface {
	Classify(ctx context.Context, repo types.RepositoryID, tag, url, notes string) (*model.SeverityJudgment, error)
}

// NotificationRouter delivers a classified release to the sinks its severity requires
type NotificationRouter interface {
	Route(ctx context.Context, repo *model.Repository, release *model.ReleaseInfo, judgment *model.SeverityJudgment) *model.RouteResult
}
