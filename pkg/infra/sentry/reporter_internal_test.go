package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestReporter_ReportAttachesErrorValues(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	gt.NoError(t, err)
	reporter := &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}

	reporter.Report(context.Background(), goerr.Wrap(errors.New("boom"), "failed to deliver notification",
		goerr.V("repository", "a/b"),
		goerr.V("tag", "v1.0"),
	))

	gt.Number(t, len(events)).Equal(1)
	gt.Value(t, events[0].Contexts["error"]["repository"]).Equal(any("a/b"))
	gt.Value(t, events[0].Contexts["error"]["tag"]).Equal(any("v1.0"))
}
