package sentry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/infra/sentry"
)

func TestReporter_Report(t *testing.T) {
	// An empty DSN builds a disabled client, so events are dropped locally.
	reporter, err := sentry.New("", "test", "dev")
	gt.NoError(t, err)

	reporter.Report(context.Background(), goerr.Wrap(errors.New("boom"), "failed", goerr.V("repository", "a/b")))
	gt.Value(t, reporter.Flush(100*time.Millisecond)).Equal(true)
}

func TestReporter_InvalidDSN(t *testing.T) {
	_, err := sentry.New("not a dsn", "test", "dev")
	gt.Error(t, err)
}
