// Package os has the process level helpers of the relay binary.
package os

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext is done once the process gets SIGINT or SIGTERM.
// A second signal is left to the default handler, so it kills the
// process if the graceful stop hangs.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}
