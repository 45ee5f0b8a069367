package runner

import (
	"context"

	"github.com/aretw0/impulse/pkg/domain"
)

// OutputHandler defines how a run's progress is presented.
// This allows switching between Text (CLI) and JSON (structured) modes.
//
// Started, Tick and Abandon are called from the simulator's tick goroutine,
// one call at a time. Finished is called from the goroutine running Run.
type OutputHandler interface {
	// Started announces a new run.
	Started(ctx context.Context, ev *domain.RunEvent) error

	// Tick presents the population after a committed tick.
	Tick(ctx context.Context, ev *domain.TickEvent) error

	// Abandon reports a single abandonment.
	Abandon(ctx context.Context, ev *domain.CustomerEvent) error

	// Finished presents the outcome once the run is over.
	Finished(ctx context.Context, res Result) error

	// SystemOutput presents a meta-message (status updates, warnings).
	SystemOutput(ctx context.Context, msg string) error
}

// NopHandler discards all output.
type NopHandler struct{}

func (NopHandler) Started(context.Context, *domain.RunEvent) error      { return nil }
func (NopHandler) Tick(context.Context, *domain.TickEvent) error        { return nil }
func (NopHandler) Abandon(context.Context, *domain.CustomerEvent) error { return nil }
func (NopHandler) Finished(context.Context, Result) error               { return nil }
func (NopHandler) SystemOutput(context.Context, string) error           { return nil }
