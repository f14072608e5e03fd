package interfaces

import (
	"context"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// ReleaseSource lists published releases of a repository
type ReleaseSource interface {
	// ListReleases returns releases newest first. An empty slice means the repository has
	// no releases and is not an error.
	ListReleases(ctx context.Context, repo types.RepositoryID) ([]*model.ReleaseInfo, error)
}

// IssueTracker creates tracking issues
type IssueTracker interface {
	// CreateIssue opens an issue on repo and returns its canonical URL
	CreateIssue(ctx context.Context, repo types.RepositoryID, req *model.IssueRequest) (string, error)
}
