package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/cli/config"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/infra/dryrun"
	"github.com/m-mizutani/relwatch/pkg/usecase"
)

func cmdRun() *cli.Command {
	var (
		githubCfg    config.GitHub
		llmCfg       config.LLM
		slackCfg     config.Slack
		cacheCfg     config.Cache
		watchlistCfg config.Watchlist
		sentryCfg    config.Sentry
		dryRun       bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Log routing decisions instead of posting to Slack or GitHub, and keep the cache unchanged",
			Destination: &dryRun,
			Sources:     cli.EnvVars("RELWATCH_DRY_RUN"),
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, watchlistCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Check watched repositories for new releases and notify",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			repos, err := watchlistCfg.Load()
			if err != nil {
				return err
			}

			if !dryRun {
				if err := githubCfg.ValidateIssueSink(); err != nil {
					return err
				}
			}
			if githubCfg.HTTPCacheDir == "" {
				githubCfg.HTTPCacheDir = cacheCfg.HTTPCacheDir()
			}

			ghClient, err := githubCfg.NewClient(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			llmClient, err := llmCfg.NewClient(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create LLM client")
			}
			classifier, err := usecase.NewClassifier(llmClient, usecase.WithMinInterval(llmCfg.Interval))
			if err != nil {
				return goerr.Wrap(err, "failed to create severity classifier")
			}

			store, closeStore, err := cacheCfg.NewStore(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to open version cache")
			}
			defer closeStore()

			var (
				chat   interfaces.ChatNotifier
				issues interfaces.IssueTracker = ghClient
			)
			if dryRun {
				logger.Info("Dry run: notifications are logged and the cache is not written")
				chat = &dryrun.ChatNotifier{}
				issues = &dryrun.IssueTracker{}
				store = &dryrun.CacheStore{Base: store}
			} else {
				chat, err = slackCfg.NewNotifier(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create chat notifier")
				}
			}

			var opts []usecase.PipelineOption
			reporter, err := sentryCfg.NewReporter(ctx)
			if err != nil {
				return err
			}
			if reporter != nil {
				opts = append(opts, usecase.WithErrorReporter(reporter))
				defer reporter.Flush(5 * time.Second)
			}

			logger.Info("Configured release check",
				slog.Int("repositories", len(repos)),
				slog.String("llm_provider", llmCfg.Provider),
				slog.String("cache_backend", cacheCfg.Backend),
			)

			pipeline := usecase.NewPipeline(
				usecase.NewFetcher(ghClient),
				classifier,
				usecase.NewRouter(chat, issues),
				usecase.NewVersionCache(store),
				opts...,
			)
			report := pipeline.Run(ctx, repos)

			var w io.Writer = os.Stdout
			if root := c.Root(); root != nil && root.Writer != nil {
				w = root.Writer
			}
			printReport(w, report)

			return nil
		},
	}
}
