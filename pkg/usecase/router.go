package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

type router struct {
	chat   interfaces.ChatNotifier
	issues interfaces.IssueTracker
}

// NewRouter creates a NotificationRouter delivering to chat and issue tracker
func NewRouter(chat interfaces.ChatNotifier, issues interfaces.IssueTracker) interfaces.NotificationRouter {
	return &router{
		chat:   chat,
		issues: issues,
	}
}

// Route invokes the sinks selected by model.Decide. For high severity the issue is
// created first so the chat message can link it; a failed issue does not stop the chat
// message. Sink failures are logged, joined into RouteResult.Err and never undo earlier
// deliveries.
func (x *router) Route(ctx context.Context, repo *model.Repository, release *model.ReleaseInfo, judgment *model.SeverityJudgment) *model.RouteResult {
	logger := ctxlog.From(ctx)

	result := &model.RouteResult{
		Decision: model.Decide(judgment.Severity),
	}

	if !result.Decision.Chat && !result.Decision.Issue {
		logger.Info("No notification required",
			"repository", repo.ID,
			"tag", release.Tag,
			"severity", judgment.Severity,
		)
		return result
	}

	if result.Decision.Issue {
		issueURL, err := x.issues.CreateIssue(ctx, repo.ID, BuildIssueRequest(repo, release, judgment))
		if err != nil {
			result.Err = errors.Join(result.Err, err)
			logger.Error("Failed to create tracking issue",
				"repository", repo.ID,
				"tag", release.Tag,
				"error", err,
			)
		} else {
			result.IssueURL = issueURL
			logger.Info("Created tracking issue",
				"repository", repo.ID,
				"tag", release.Tag,
				"issue_url", issueURL,
			)
		}
	}

	if result.Decision.Chat {
		message := FormatChatMessage(repo, release, judgment, result.IssueURL)
		if err := x.chat.Notify(ctx, message); err != nil {
			result.Err = errors.Join(result.Err, err)
			logger.Error("Failed to send chat notification",
				"repository", repo.ID,
				"tag", release.Tag,
				"error", err,
			)
		} else {
			result.ChatSent = true
			logger.Info("Sent chat notification",
				"repository", repo.ID,
				"tag", release.Tag,
				"severity", judgment.Severity,
			)
		}
	}

	return result
}

// FormatChatMessage renders the chat text. issueURL is omitted when empty.
func FormatChatMessage(repo *model.Repository, release *model.ReleaseInfo, judgment *model.SeverityJudgment, issueURL string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(":wave: Update detected for *%s*!\n", repo.ID))
	sb.WriteString(fmt.Sprintf("• *Version:* %s\n", release.Tag))
	if !release.PublishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("• *Date:* %s\n", release.PublishedAt.UTC().Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("• *Severity:* %s\n", judgment.Severity.Label()))
	sb.WriteString(fmt.Sprintf("• *Summary:* %s\n", judgment.Summary))
	if release.URL != "" {
		sb.WriteString(fmt.Sprintf("• *URL:* %s\n", release.URL))
	}
	if issueURL != "" {
		sb.WriteString(fmt.Sprintf("• *Issue:* %s\n", issueURL))
	}

	return sb.String()
}

// BuildIssueRequest renders the tracking issue for a high severity release
func BuildIssueRequest(repo *model.Repository, release *model.ReleaseInfo, judgment *model.SeverityJudgment) *model.IssueRequest {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s %s\n\n", repo.ID, release.Tag))
	sb.WriteString(fmt.Sprintf("**Severity**: %s\n\n", judgment.Severity.Label()))
	sb.WriteString(fmt.Sprintf("**Summary**: %s\n\n", judgment.Summary))
	if release.URL != "" {
		sb.WriteString(fmt.Sprintf("**Release**: %s\n\n", release.URL))
	}
	if !release.PublishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("**Published**: %s\n\n", release.PublishedAt.UTC().Format(time.RFC3339)))
	}
	if repo.DocsURL != "" {
		sb.WriteString(fmt.Sprintf("**Testing guidance**: %s\n\n", repo.DocsURL))
	}
	sb.WriteString("---\n")
	sb.WriteString("🤖 Opened by relwatch\n")

	return &model.IssueRequest{
		Title:     fmt.Sprintf("[%s] Review release %s", repo.ID, release.Tag),
		Body:      sb.String(),
		Assignees: repo.Assignees,
	}
}
