package interfaces

import "context"

// ChatNotifier posts a single text message to a chat channel
type ChatNotifier interface {
	Notify(ctx context.Context, text string) error
}

// ErrorReporter forwards failures to an external error tracker
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}
