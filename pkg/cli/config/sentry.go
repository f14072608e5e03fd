package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/m-mizutani/relwatch/pkg/infra/secret"
	"github.com/m-mizutani/relwatch/pkg/infra/sentry"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (or gcpsm:// secret reference); failures are only logged when empty",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("RELWATCH_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("RELWATCH_SENTRY_ENV"),
		},
	}
}

// NewReporter returns nil without error when Sentry is not configured
func (c *Sentry) NewReporter(ctx context.Context) (*sentry.Reporter, error) {
	if c.DSN == "" {
		return nil, nil
	}
	if err := secret.ResolveAll(ctx, &c.DSN); err != nil {
		return nil, err
	}
	return sentry.New(c.DSN, c.Env, types.Version)
}
