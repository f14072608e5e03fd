package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
)

var _ interfaces.ErrorReporter = (*Reporter)(nil)

// Reporter sends pipeline failures to Sentry
type Reporter struct {
	hub *sentry.Hub
}

// New initializes a Sentry client for dsn
func New(dsn, env, release string) (*Reporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry client")
	}

	return &Reporter{
		hub: sentry.NewHub(client, sentry.NewScope()),
	}, nil
}

// Report captures err with its goerr values as the "error" context
func (x *Reporter) Report(ctx context.Context, err error) {
	x.hub.WithScope(func(scope *sentry.Scope) {
		if values := goerr.Values(err); len(values) > 0 {
			scope.SetContext("error", sentry.Context(values))
		}
		x.hub.CaptureException(err)
	})
}

// Flush waits until buffered events are sent or timeout expires
func (x *Reporter) Flush(timeout time.Duration) bool {
	return x.hub.Flush(timeout)
}
