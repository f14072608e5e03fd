package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/utils/safe"
)

// Pipeline processes the watch list one repository at a time
type Pipeline struct {
	fetcher    interfaces.ReleaseFetcher
	classifier interfaces.SeverityClassifier
	router     interfaces.NotificationRouter
	cache      *VersionCache
	reporter   interfaces.ErrorReporter
}

// PipelineOption configures Pipeline
type PipelineOption func(*Pipeline)

// WithErrorReporter forwards per-repository failures to reporter
func WithErrorReporter(reporter interfaces.ErrorReporter) PipelineOption {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

// NewPipeline creates a Pipeline. The pipeline becomes the only user of cache.
func NewPipeline(
	fetcher interfaces.ReleaseFetcher,
	classifier interfaces.SeverityClassifier,
	router interfaces.NotificationRouter,
	cache *VersionCache,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		router:     router,
		cache:      cache,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads the cache and processes every repository sequentially. A failure of one
// repository never stops the batch; the cache is flushed after each processed release.
func (x *Pipeline) Run(ctx context.Context, repos []*model.Repository) *model.RunReport {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting release check", "repositories", len(repos))

	x.cache.Load(ctx)

	report := &model.RunReport{RunID: runID}
	for _, repo := range repos {
		var result model.RepositoryResult
		err := safe.Run(ctx, func(ctx context.Context) error {
			result = x.processRepository(ctx, repo)
			return result.Err
		})
		if err != nil && result.Err == nil {
			result = model.RepositoryResult{
				Repository: repo.ID,
				Tag:        result.Tag,
				Outcome:    model.OutcomeFailed,
				Err:        err,
			}
		}
		if result.Err != nil && x.reporter != nil {
			x.reporter.Report(ctx, result.Err)
		}

		logger.Info("Processed repository",
			"repository", repo.ID,
			"tag", result.Tag,
			"outcome", result.Outcome,
		)
		report.Results = append(report.Results, result)
	}

	summary := []any{"repositories", len(report.Results)}
	for _, outcome := range model.Outcomes {
		if n := report.Count(outcome); n > 0 {
			summary = append(summary, string(outcome), n)
		}
	}
	logger.Info("Finished release check", summary...)

	return report
}

func (x *Pipeline) processRepository(ctx context.Context, repo *model.Repository) model.RepositoryResult {
	logger := ctxlog.From(ctx)
	result := model.RepositoryResult{Repository: repo.ID}

	release := x.fetcher.Fetch(ctx, repo.ID)
	if release == nil {
		result.Outcome = model.OutcomeSkippedNoRelease
		return result
	}
	result.Tag = release.Tag

	if x.cache.Has(repo.ID, release.Tag) {
		logger.Debug("Release already processed", "repository", repo.ID, "tag", release.Tag)
		result.Outcome = model.OutcomeSkippedAlreadySeen
		return result
	}

	judgment, err := x.classifier.Classify(ctx, repo.ID, release.Tag, release.URL, release.Notes)
	if err != nil {
		logger.Warn("Skipping release, classification failed",
			"repository", repo.ID,
			"tag", release.Tag,
			"error", err,
		)
		result.Outcome = model.OutcomeSkippedClassificationError
		result.Err = goerr.Wrap(err, "failed to classify release",
			goerr.V("repository", repo.ID),
			goerr.V("tag", release.Tag),
		)
		return result
	}
	result.Severity = judgment.Severity

	routed := x.router.Route(ctx, repo, release, judgment)
	result.Outcome = routed.Outcome()
	result.IssueURL = routed.IssueURL
	if routed.Err != nil {
		result.Err = goerr.Wrap(routed.Err, "failed to deliver notification",
			goerr.V("repository", repo.ID),
			goerr.V("tag", release.Tag),
			goerr.V("severity", judgment.Severity),
		)
	}

	// Every classified release is recorded, low severity included.
	x.cache.Record(repo.ID, release.Tag)
	if err := x.cache.Flush(ctx); err != nil {
		logger.Error("Failed to persist version cache", "repository", repo.ID, "error", err)
	}

	return result
}
