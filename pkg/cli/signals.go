package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownContext returns a copy of parent that is cancelled on SIGINT or
// SIGTERM. stop releases the signal registration.
func ShutdownContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
