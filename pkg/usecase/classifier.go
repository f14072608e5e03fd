package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/time/rate"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

//go:embed prompts/severity_system.md
var severitySystemPrompt string

//go:embed prompts/severity_user.md
var severityUserPromptTemplate string

type classifier struct {
	llmClient    gollem.LLMClient
	userTemplate *template.Template
	limiter      *rate.Limiter
}

// ClassifierOption configures the severity classifier
type ClassifierOption func(*classifier)

// WithMinInterval spaces LLM calls at least interval apart. Zero disables pacing.
func WithMinInterval(interval time.Duration) ClassifierOption {
	return func(c *classifier) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// NewClassifier creates a SeverityClassifier backed by an LLM
func NewClassifier(llmClient gollem.LLMClient, opts ...ClassifierOption) (interfaces.SeverityClassifier, error) {
	tmpl, err := template.New("severity").Parse(severityUserPromptTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse severity prompt template")
	}

	c := &classifier{
		llmClient:    llmClient,
		userTemplate: tmpl,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Classify asks the LLM for a judgment of one release. Results are not memoized.
func (x *classifier) Classify(ctx context.Context, repo types.RepositoryID, tag, url, notes string) (*model.SeverityJudgment, error) {
	logger := ctxlog.From(ctx)

	var buf bytes.Buffer
	if err := x.userTemplate.Execute(&buf, map[string]string{
		"Repository": repo.String(),
		"Tag":        tag,
		"URL":        url,
		"Notes":      strings.TrimSpace(notes),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute severity prompt template")
	}
	userPrompt := buf.String()

	if x.limiter != nil {
		if err := x.limiter.Wait(ctx); err != nil {
			return nil, goerr.Wrap(err, "interrupted while waiting for LLM rate limit")
		}
	}

	logger.Debug("Calling LLM for severity classification",
		"repository", repo,
		"tag", tag,
		"prompt_length", len(userPrompt),
	)

	session, err := x.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(severitySystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session", goerr.T(types.ErrTagTransport))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(userPrompt)})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate LLM content",
			goerr.V("repository", repo),
			goerr.V("tag", tag),
			goerr.T(types.ErrTagTransport),
		)
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.New("no response from LLM",
			goerr.V("repository", repo),
			goerr.V("tag", tag),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}

	judgment, err := ParseJudgment(strings.Join(resp.Texts, ""))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response",
			goerr.V("repository", repo),
			goerr.V("tag", tag),
		)
	}

	logger.Info("Classified release",
		"repository", repo,
		"tag", tag,
		"severity", judgment.Severity,
	)

	return judgment, nil
}

// ParseJudgment validates raw LLM output against the {severity, summary} contract. Any
// deviation, including unknown fields or trailing data, is a malformed response.
func ParseJudgment(text string) (*model.SeverityJudgment, error) {
	raw := stripCodeFence(text)

	var parsed struct {
		Severity *string `json:"severity"`
		Summary  *string `json:"summary"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "response is not a judgment object",
			goerr.V("response", text),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, goerr.New("unexpected data after judgment object",
			goerr.V("response", text),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}

	if parsed.Severity == nil || parsed.Summary == nil {
		return nil, goerr.New("judgment must have severity and summary",
			goerr.V("response", text),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}

	severity, err := model.ParseSeverity(*parsed.Severity)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid severity in judgment", goerr.V("response", text))
	}

	summary := strings.TrimSpace(*parsed.Summary)
	if summary == "" {
		return nil, goerr.New("judgment summary is empty",
			goerr.V("response", text),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}

	return &model.SeverityJudgment{
		Severity: severity,
		Summary:  summary,
	}, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add despite the
// JSON content type
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
