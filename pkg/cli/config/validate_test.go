package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/cli/config"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

func TestGitHub_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GitHub
		wantErr bool
	}{
		{name: "no credential", cfg: config.GitHub{}},
		{name: "token", cfg: config.GitHub{Token: "ghp_xxx"}},
		{name: "complete app", cfg: config.GitHub{AppID: 1, AppInstallationID: 2, AppPrivateKey: "key.pem"}},
		{name: "partial app", cfg: config.GitHub{AppID: 1}, wantErr: true},
		{name: "invalid issue repository", cfg: config.GitHub{IssueRepository: "nope"}, wantErr: true},
		{name: "issue repository", cfg: config.GitHub{IssueRepository: "org/tracker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.Value(t, goerr.HasTag(err, types.ErrTagInvalidConfig)).Equal(true)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestGitHub_NewClient_Token(t *testing.T) {
	cfg := config.GitHub{Token: "ghp_xxx", PerPage: 5}
	client, err := cfg.NewClient(context.Background())
	gt.NoError(t, err)
	gt.Value(t, client).NotNil()
}

func TestGitHub_ValidateIssueSink(t *testing.T) {
	err := (&config.GitHub{Token: "ghp_xxx"}).ValidateIssueSink()
	gt.Error(t, err)
	gt.Value(t, goerr.HasTag(err, types.ErrTagInvalidConfig)).Equal(true)

	gt.NoError(t, (&config.GitHub{IssueRepository: "org/tracker"}).ValidateIssueSink())
}

func TestGitHub_NewClient_IssuesGoToTracker(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":1,"html_url":"https://github.com/org/tracker/issues/1"}`))
	}))
	defer server.Close()

	cfg := config.GitHub{
		Token:           "ghp_xxx",
		BaseURL:         server.URL + "/",
		IssueRepository: "org/tracker",
	}
	client, err := cfg.NewClient(context.Background())
	gt.NoError(t, err)

	url, err := client.CreateIssue(context.Background(), config.DefaultRepositories[1].ID, &model.IssueRequest{Title: "t", Body: "b"})
	gt.NoError(t, err)
	gt.Value(t, url).Equal("https://github.com/org/tracker/issues/1")
	gt.Value(t, gotPath).Equal("/repos/org/tracker/issues")
}

func TestGitHub_NewClient_WithoutTrackerNeverFilesUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	cfg := config.GitHub{Token: "ghp_xxx", BaseURL: server.URL + "/"}
	client, err := cfg.NewClient(context.Background())
	gt.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), config.DefaultRepositories[1].ID, &model.IssueRequest{Title: "t", Body: "b"})
	gt.Error(t, err)
}

func TestCache_HTTPCacheDir(t *testing.T) {
	file := config.Cache{Backend: config.CacheBackendFile, Path: filepath.Join("state", "versions.json")}
	gt.Value(t, file.HTTPCacheDir()).Equal(filepath.Join("state", "github-http-cache"))

	gcs := config.Cache{Backend: config.CacheBackendGCS, GCSBucket: "b", GCSObject: "o"}
	gt.Value(t, gcs.HTTPCacheDir()).Equal("")
}

func TestGitHub_NewClient_MissingPrivateKey(t *testing.T) {
	cfg := config.GitHub{
		AppID:             1,
		AppInstallationID: 2,
		AppPrivateKey:     filepath.Join(t.TempDir(), "missing.pem"),
	}
	_, err := cfg.NewClient(context.Background())
	gt.Error(t, err)
}

func TestLLM_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLM
		wantErr bool
	}{
		{name: "openai", cfg: config.LLM{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk-xxx"}},
		{name: "openai without key", cfg: config.LLM{Provider: config.ProviderOpenAI}, wantErr: true},
		{name: "gemini", cfg: config.LLM{Provider: config.ProviderGemini, GeminiProjectID: "p"}},
		{name: "gemini without project", cfg: config.LLM{Provider: config.ProviderGemini}, wantErr: true},
		{name: "unknown provider", cfg: config.LLM{Provider: "claude"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestSlack_Validate(t *testing.T) {
	gt.NoError(t, (&config.Slack{WebhookURL: "https://hooks.slack.com/services/x"}).Validate())
	gt.NoError(t, (&config.Slack{BotToken: "xoxb-1", Channel: "C123"}).Validate())
	gt.Error(t, (&config.Slack{BotToken: "xoxb-1"}).Validate())
	gt.Error(t, (&config.Slack{}).Validate())
}

func TestCache_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Cache
		wantErr bool
	}{
		{name: "file", cfg: config.Cache{Backend: config.CacheBackendFile, Path: "cache.json"}},
		{name: "file without path", cfg: config.Cache{Backend: config.CacheBackendFile}, wantErr: true},
		{name: "gcs", cfg: config.Cache{Backend: config.CacheBackendGCS, GCSBucket: "b", GCSObject: "o"}},
		{name: "gcs without bucket", cfg: config.Cache{Backend: config.CacheBackendGCS, GCSObject: "o"}, wantErr: true},
		{name: "firestore", cfg: config.Cache{Backend: config.CacheBackendFirestore, FirestoreProjectID: "p", FirestoreCollection: "c"}},
		{name: "firestore without project", cfg: config.Cache{Backend: config.CacheBackendFirestore, FirestoreCollection: "c"}, wantErr: true},
		{name: "unknown backend", cfg: config.Cache{Backend: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.Value(t, goerr.HasTag(err, types.ErrTagInvalidConfig)).Equal(true)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestCache_NewStore_Local(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{config.CacheBackendFile, config.CacheBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Cache{Backend: backend, Path: filepath.Join(dir, "cache."+backend)}
			store, closeFn, err := cfg.NewStore(ctx)
			gt.NoError(t, err)
			defer closeFn()

			gt.NoError(t, store.Save(ctx, map[types.RepositoryID]string{"a/b": "v1.0.0"}))
			loaded, err := store.Load(ctx)
			gt.NoError(t, err)
			gt.Value(t, loaded["a/b"]).Equal("v1.0.0")
		})
	}
}

func TestSentry_NewReporter_Disabled(t *testing.T) {
	reporter, err := (&config.Sentry{}).NewReporter(context.Background())
	gt.NoError(t, err)
	gt.Value(t, reporter == nil).Equal(true)
}
