package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap" // Logging.
)

// WithInterrupt returns a Context that will be canceled if a SIGINT or SIGTERM is received.
func WithInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	ctxWithCancel, cancel := context.WithCancel(ctx)
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer cancel()
		defer signal.Stop(signalCh)
		select {
		case sig := <-signalCh:
			zap.L().Info("got signal, shutting down", zap.Stringer("signal", sig))
		case <-ctxWithCancel.Done():
		}
	}()
	return ctxWithCancel, cancel
}
