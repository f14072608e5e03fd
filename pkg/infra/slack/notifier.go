package slack

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var (
	_ interfaces.ChatNotifier = (*WebhookNotifier)(nil)
	_ interfaces.ChatNotifier = (*BotNotifier)(nil)
)

// WebhookNotifier posts messages to a Slack incoming webhook
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier for an incoming webhook URL. A nil httpClient
// uses http.DefaultClient.
func NewWebhookNotifier(url string, httpClient *http.Client) *WebhookNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: httpClient,
	}
}

// Notify sends text as a single webhook message
func (x *WebhookNotifier) Notify(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, x.url, x.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack webhook", goerr.T(types.ErrTagSink))
	}
	return nil
}

// BotNotifier posts messages to a channel with a bot token
type BotNotifier struct {
	client  *slack.Client
	channel string
}

// NewBotNotifier creates a notifier posting to channel. Extra slack options (e.g. an API
// URL for tests) are passed through to slack.New.
func NewBotNotifier(token, channel string, opts ...slack.Option) *BotNotifier {
	return &BotNotifier{
		client:  slack.New(token, opts...),
		channel: channel,
	}
}

// Notify posts text to the configured channel
func (x *BotNotifier) Notify(ctx context.Context, text string) error {
	_, _, err := x.client.PostMessageContext(ctx, x.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message",
			goerr.V("channel", x.channel),
			goerr.T(types.ErrTagSink),
		)
	}
	return nil
}
