package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures the OutputHandler.
func WithHandler(handler OutputHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithFastForward makes Run drive ticks itself instead of waiting for the
// simulator's ticker. The simulator must be built with
// impulse.WithManualTicks.
func WithFastForward(fast bool) Option {
	return func(r *Runner) {
		r.Fast = fast
	}
}
