package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"maps"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// MockReleaseSource is a mock implementation of ReleaseSource
type MockReleaseSource struct {
	listReleasesFunc func(ctx context.Context, repo types.RepositoryID) ([]*model.ReleaseInfo, error)
	calls            []types.RepositoryID
}

func (m *MockReleaseSource) ListReleases(ctx context.Context, repo types.RepositoryID) ([]*model.ReleaseInfo, error) {
	m.calls = append(m.calls, repo)
	if m.listReleasesFunc != nil {
		return m.listReleasesFunc(ctx, repo)
	}
	return nil, errors.New("mock not configured")
}

// staticReleases serves one release per repository
func staticReleases(releases map[types.RepositoryID]*model.ReleaseInfo) *MockReleaseSource {
	return &MockReleaseSource{
		listReleasesFunc: func(ctx context.Context, repo types.RepositoryID) ([]*model.ReleaseInfo, error) {
			if r, ok := releases[repo]; ok {
				return []*model.ReleaseInfo{r}, nil
			}
			return nil, nil
		},
	}
}

// MockChatNotifier records every message
type MockChatNotifier struct {
	notifyFunc func(ctx context.Context, text string) error
	messages   []string
}

func (m *MockChatNotifier) Notify(ctx context.Context, text string) error {
	m.messages = append(m.messages, text)
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, text)
	}
	return nil
}

type MockIssueCall struct {
	Repo    types.RepositoryID
	Request *model.IssueRequest
}

// MockIssueTracker records every issue request
type MockIssueTracker struct {
	createIssueFunc func(ctx context.Context, repo types.RepositoryID, req *model.IssueRequest) (string, error)
	calls           []MockIssueCall
}

func (m *MockIssueTracker) CreateIssue(ctx context.Context, repo types.RepositoryID, req *model.IssueRequest) (string, error) {
	m.calls = append(m.calls, MockIssueCall{Repo: repo, Request: req})
	if m.createIssueFunc != nil {
		return m.createIssueFunc(ctx, repo, req)
	}
	return "https://github.com/" + repo.String() + "/issues/1", nil
}

// MockCacheStore keeps the snapshot in memory
type MockCacheStore struct {
	data     map[types.RepositoryID]string
	loadErr  error
	saveErr  error
	saves    int
	saveFunc func(snapshot map[types.RepositoryID]string) error
}

func (m *MockCacheStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return maps.Clone(m.data), nil
}

func (m *MockCacheStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	m.saves++
	if m.saveFunc != nil {
		if err := m.saveFunc(snapshot); err != nil {
			return err
		}
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = maps.Clone(snapshot)
	return nil
}

// newLLMMock returns a gollem mock whose response is produced by respond. It counts
// Generate calls in *calls.
func newLLMMock(calls *int, respond func(prompt string) (*gollem.Response, error)) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
					*calls++
					var prompt string
					for _, in := range input {
						if text, ok := in.(gollem.Text); ok {
							prompt += string(text)
						}
					}
					return respond(prompt)
				},
			}, nil
		},
	}
}

// judgmentResponse renders a judgment the way the LLM would return it
func judgmentResponse(severity, summary string) (*gollem.Response, error) {
	raw, err := json.Marshal(map[string]string{
		"severity": severity,
		"summary":  summary,
	})
	if err != nil {
		return nil, err
	}
	return &gollem.Response{Texts: []string{string(raw)}}, nil
}
