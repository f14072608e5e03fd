package safe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relwatch/pkg/utils/safe"
)

func TestRun(t *testing.T) {
	t.Run("returns nil on success", func(t *testing.T) {
		called := false
		err := safe.Run(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})
		gt.NoError(t, err)
		gt.Value(t, called).Equal(true)
	})

	t.Run("passes handler error through", func(t *testing.T) {
		want := errors.New("handler failed")
		err := safe.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		gt.Value(t, errors.Is(err, want)).Equal(true)
	})

	t.Run("converts panic to error and logs stack", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx := ctxlog.With(context.Background(), logger)

		err := safe.Run(ctx, func(ctx context.Context) error {
			panic("boom")
		})
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("panic in handler")
		gt.String(t, buf.String()).Contains("boom")
		gt.String(t, buf.String()).Contains("stack")
	})
}
