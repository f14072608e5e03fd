package config

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
	githubinfra "github.com/m-mizutani/relwatch/pkg/infra/github"
	"github.com/m-mizutani/relwatch/pkg/infra/secret"
)

// GitHub holds GitHub configuration. Either Token or the App triple is used; without
// both, requests are unauthenticated (public repositories, low rate limit).
type GitHub struct {
	Token             string `masq:"secret"`
	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string `masq:"secret"`
	BaseURL           string
	IssueRepository   string
	PerPage           int
	HTTPCacheDir      string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (or gcpsm:// secret reference)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.AppInstallationID,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key: PEM text, file path or gcpsm:// secret reference",
			Destination: &c.AppPrivateKey,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise)",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "github-issue-repository",
			Usage:       "owner/name of the tracker repository receiving tracking issues for high severity releases",
			Destination: &c.IssueRepository,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_ISSUE_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-http-cache-dir",
			Usage:       "Directory persisting GitHub API responses so later runs send conditional requests (default: next to the file or sqlite cache)",
			Destination: &c.HTTPCacheDir,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_HTTP_CACHE_DIR"),
		},
		&cli.IntFlag{
			Name:        "github-per-page",
			Usage:       "Number of releases requested per repository",
			Value:       10,
			Destination: &c.PerPage,
			Sources:     cli.EnvVars("RELWATCH_GITHUB_PER_PAGE"),
		},
	}
}

func (c *GitHub) useApp() bool {
	return c.AppID != 0 || c.AppInstallationID != 0 || c.AppPrivateKey != ""
}

// Validate checks that App authentication is either complete or absent
func (c *GitHub) Validate() error {
	if c.useApp() && (c.AppID == 0 || c.AppInstallationID == 0 || c.AppPrivateKey == "") {
		return goerr.New("GitHub App requires app ID, installation ID and private key",
			goerr.V("app_id", c.AppID),
			goerr.V("installation_id", c.AppInstallationID),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	if c.IssueRepository != "" {
		if err := types.RepositoryID(c.IssueRepository).Validate(); err != nil {
			return goerr.Wrap(err, "invalid issue repository")
		}
	}
	return nil
}

// ValidateIssueSink checks that tracking issues have a tracker repository to go to. It is
// required whenever issues are really created.
func (c *GitHub) ValidateIssueSink() error {
	if c.IssueRepository == "" {
		return goerr.New("GitHub issue repository is required to create tracking issues",
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return nil
}

// NewClient builds the GitHub client used both as release source and issue tracker
func (c *GitHub) NewClient(ctx context.Context) (*githubinfra.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := secret.ResolveAll(ctx, &c.Token, &c.AppPrivateKey); err != nil {
		return nil, err
	}

	opts := []githubinfra.Option{
		githubinfra.WithPerPage(c.PerPage),
		githubinfra.WithBaseURL(c.BaseURL),
	}
	if c.IssueRepository != "" {
		opts = append(opts, githubinfra.WithIssueRepository(types.RepositoryID(c.IssueRepository)))
	}

	if !c.useApp() {
		if c.Token == "" {
			ctxlog.From(ctx).Warn("No GitHub credential configured, using unauthenticated requests")
		}
		httpClient := &http.Client{Transport: githubinfra.NewTransport(nil, c.HTTPCacheDir)}
		return githubinfra.NewClient(httpClient, c.Token, opts...), nil
	}

	privateKey, err := c.loadPrivateKey()
	if err != nil {
		return nil, err
	}

	itr, err := ghinstallation.New(githubinfra.NewTransport(nil, c.HTTPCacheDir), c.AppID, c.AppInstallationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", c.AppID),
			goerr.V("installation_id", c.AppInstallationID),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	if c.BaseURL != "" {
		itr.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	}

	return githubinfra.NewClient(&http.Client{Transport: itr}, "", opts...), nil
}

func (c *GitHub) loadPrivateKey() ([]byte, error) {
	if strings.Contains(c.AppPrivateKey, "-----BEGIN") {
		return []byte(c.AppPrivateKey), nil
	}

	data, err := os.ReadFile(c.AppPrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.V("path", c.AppPrivateKey),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return data, nil
}
