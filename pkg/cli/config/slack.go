package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/m-mizutani/relwatch/pkg/infra/secret"
	"github.com/m-mizutani/relwatch/pkg/infra/slack"
)

// Slack holds chat notification configuration. An incoming webhook takes precedence over
// the bot token.
type Slack struct {
	WebhookURL string `masq:"secret"`
	BotToken   string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL (or gcpsm:// secret reference)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("RELWATCH_SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (or gcpsm:// secret reference)",
			Destination: &c.BotToken,
			Sources:     cli.EnvVars("RELWATCH_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID used with the bot token",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("RELWATCH_SLACK_CHANNEL"),
		},
	}
}

// Validate checks that one delivery method is fully configured
func (c *Slack) Validate() error {
	if c.WebhookURL != "" {
		return nil
	}
	if c.BotToken == "" {
		return goerr.New("either Slack webhook URL or bot token is required", goerr.T(types.ErrTagInvalidConfig))
	}
	if c.Channel == "" {
		return goerr.New("Slack channel is required with bot token", goerr.T(types.ErrTagInvalidConfig))
	}
	return nil
}

// NewNotifier creates the chat sink
func (c *Slack) NewNotifier(ctx context.Context) (interfaces.ChatNotifier, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := secret.ResolveAll(ctx, &c.WebhookURL, &c.BotToken); err != nil {
		return nil, err
	}

	if c.WebhookURL != "" {
		return slack.NewWebhookNotifier(c.WebhookURL, nil), nil
	}
	return slack.NewBotNotifier(c.BotToken, c.Channel), nil
}
