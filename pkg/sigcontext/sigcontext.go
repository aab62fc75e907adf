// Package sigcontext ties process signals to context cancellation.
package sigcontext

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupts is the stop set for an agent running in a pod: SIGTERM from the
// kubelet at eviction, SIGINT from a terminal.
func Interrupts() []os.Signal {
	return []os.Signal{syscall.SIGTERM, os.Interrupt}
}

// WithSignalCancel derives a context that cancels itself when one of sigs
// arrives. The returned cancel releases the signal handlers and must be
// called; after release a repeated signal falls through to the runtime's
// default handling, so a second ^C terminates the process.
func WithSignalCancel(ctx context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	sigctx, ctxcancel := context.WithCancel(ctx)

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, sigs...)

	var once sync.Once
	cancel := func() {
		ctxcancel()
		once.Do(func() {
			signal.Stop(sigchan)
		})
	}

	go func() {
		select {
		case <-sigctx.Done():
		case <-sigchan:
			ctxcancel()
		}
	}()

	return sigctx, cancel
}
