package safe

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Run executes handler in the current goroutine and converts a panic into an error
//
// Behavior:
//   - Returns the handler's error unchanged
//   - Recovers from panics, logs the stack and returns an error carrying the panic value
func Run(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			ctxlog.From(ctx).Error("panic in handler",
				"recover", r,
				"stack", string(stack))
			err = goerr.New("panic in handler",
				goerr.V("recover", fmt.Sprint(r)),
			)
		}
	}()

	return handler(ctx)
}
