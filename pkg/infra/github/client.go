package github

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v75/github"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var (
	_ interfaces.ReleaseSource = (*Client)(nil)
	_ interfaces.IssueTracker  = (*Client)(nil)
)

// Client serves releases and creates tracking issues through the GitHub REST API
type Client struct {
	githubClient *github.Client
	perPage      int
	issueRepo    types.RepositoryID
}

// Option is a functional option for Client
type Option func(*Client)

// WithPerPage sets how many releases are requested per call
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithIssueRepository sets the tracker repository receiving every tracking issue. Without
// it CreateIssue fails.
func WithIssueRepository(repo types.RepositoryID) Option {
	return func(c *Client) {
		c.issueRepo = repo
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		u, err := url.Parse(baseURL)
		if err != nil || baseURL == "" {
			return
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.githubClient.BaseURL = u
	}
}

// NewTransport builds the transport stack shared by token and App authentication:
//  1. httpcache on disk under cacheDir, so the next run revalidates release lists with
//     If-None-Match and a 304 does not count against the rate limit. Empty cacheDir
//     disables it.
//  2. go-github-ratelimit (sleeps on secondary rate limit responses)
func NewTransport(base http.RoundTripper, cacheDir string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	transport := base
	if cacheDir != "" {
		cacheTransport := httpcache.NewTransport(diskcache.New(cacheDir))
		cacheTransport.Transport = base
		transport = &readFullTransport{next: cacheTransport}
	}

	return github_ratelimit.NewClient(transport).Transport
}

// readFullTransport reads every response body to EOF. httpcache only stores a response once
// its body hits EOF, and a JSON decoder may stop reading before that.
type readFullTransport struct {
	next http.RoundTripper
}

func (t *readFullTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// NewClient creates a Client on top of httpClient. A nil httpClient uses the shared
// transport stack without HTTP cache.
func NewClient(httpClient *http.Client, token string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: NewTransport(nil, "")}
	}

	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	c := &Client{
		githubClient: gh,
		perPage:      10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns the first page of releases, newest first as ordered by GitHub
func (c *Client) ListReleases(ctx context.Context, repo types.RepositoryID) ([]*model.ReleaseInfo, error) {
	if err := repo.Validate(); err != nil {
		return nil, err
	}

	releases, resp, err := c.githubClient.Repositories.ListReleases(ctx, repo.Owner(), repo.Name(), &github.ListOptions{
		PerPage: c.perPage,
	})
	if err != nil {
		return nil, wrapAPIError(err, resp, "failed to list releases", repo)
	}

	if resp != nil {
		ctxlog.From(ctx).Debug("Listed releases",
			"repository", repo,
			"count", len(releases),
			"rate_remaining", resp.Rate.Remaining,
		)
	}

	result := make([]*model.ReleaseInfo, 0, len(releases))
	for _, r := range releases {
		result = append(result, mapRelease(r))
	}

	return result, nil
}

// CreateIssue opens a tracking issue about repo in the tracker repository and returns its
// HTML URL. Issues are never filed on the released repository itself.
func (c *Client) CreateIssue(ctx context.Context, repo types.RepositoryID, req *model.IssueRequest) (string, error) {
	target := c.issueRepo
	if target == "" {
		return "", goerr.New("issue repository is not configured",
			goerr.V("repository", repo),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	if err := target.Validate(); err != nil {
		return "", err
	}

	issueReq := &github.IssueRequest{
		Title: github.Ptr(req.Title),
		Body:  github.Ptr(req.Body),
	}
	if len(req.Assignees) > 0 {
		assignees := append([]string(nil), req.Assignees...)
		issueReq.Assignees = &assignees
	}

	issue, resp, err := c.githubClient.Issues.Create(ctx, target.Owner(), target.Name(), issueReq)
	if err != nil {
		return "", wrapAPIError(err, resp, "failed to create issue", target)
	}

	return issue.GetHTMLURL(), nil
}

func mapRelease(r *github.RepositoryRelease) *model.ReleaseInfo {
	info := &model.ReleaseInfo{
		Tag:   r.GetTagName(),
		Name:  r.GetName(),
		URL:   r.GetHTMLURL(),
		Notes: r.GetBody(),
	}
	if r.PublishedAt != nil {
		info.PublishedAt = r.PublishedAt.Time
	}
	return info
}

// wrapAPIError attaches the HTTP status and GitHub's error body to err
func wrapAPIError(err error, resp *github.Response, msg string, repo types.RepositoryID) error {
	opts := []goerr.Option{
		goerr.V("repository", repo),
		goerr.T(types.ErrTagTransport),
	}
	if resp != nil && resp.Response != nil {
		opts = append(opts, goerr.V("status", resp.StatusCode))
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		opts = append(opts, goerr.V("message", errResp.Message))
		if len(errResp.Errors) > 0 {
			details := make([]string, 0, len(errResp.Errors))
			for _, e := range errResp.Errors {
				details = append(details, e.Error())
			}
			opts = append(opts, goerr.V("errors", strings.Join(details, "; ")))
		}
		if errResp.DocumentationURL != "" {
			opts = append(opts, goerr.V("documentation_url", errResp.DocumentationURL))
		}
	}

	return goerr.Wrap(err, msg, opts...)
}
