package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NotMyFault/cloudify-plugin/internal/logging"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// SignalError is the cancellation cause of a context stopped by a signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return "received signal " + e.Signal.String()
}

// WithSignals returns a copy of parent that is cancelled on SIGINT or SIGTERM,
// with a *SignalError as its cause.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}

// ReceivedSignal returns the signal that cancelled ctx, or nil.
func ReceivedSignal(ctx context.Context) os.Signal {
	var sigErr *SignalError
	if errors.As(context.Cause(ctx), &sigErr) {
		return sigErr.Signal
	}
	return nil
}

// NewLogger builds the application logger from the --log-level and --log-format flag values.
func NewLogger(level, format string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, lvl, f), nil
}

func createDebugHooks(logger *slog.Logger) domain.TransformHooks {
	return domain.TransformHooks{
		OnEntry: func(ctx context.Context, e *domain.EntryEvent) {
			logger.Debug("Mapping Entry", "target", e.TargetKey, "path", e.Path, "outcome", e.Outcome)
		},
		OnConversion: func(ctx context.Context, e *domain.ConversionEvent) {
			if e.Err != nil {
				logger.Debug("Conversion (Error)", "destination", e.Destination, "kind", domain.Kind(e.Err))
			} else {
				logger.Debug("Conversion (Success)", "destination", e.Destination, "duration", e.Duration)
			}
		},
	}
}
