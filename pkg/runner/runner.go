package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/impulse/internal/logging"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
	"github.com/aretw0/impulse/pkg/ports"
)

// Simulator is the part of *impulse.Simulator the Runner needs.
type Simulator interface {
	ports.Controller
	Tick(ctx context.Context) error
	Done() <-chan struct{}
	Err() error
	RunID() string
	Seed() uint64
}

// StartRequest describes the run to start.
type StartRequest struct {
	Persona   domain.Persona
	Funnel    domain.Funnel
	Customers int
	Speed     float64
}

// Result is the outcome of a run.
type Result struct {
	RunID   string                `json:"run_id"`
	Seed    uint64                `json:"seed"`
	Ticks   int                   `json:"ticks"`
	Stopped bool                  `json:"stopped"`
	Summary observability.Summary `json:"summary"`
}

// Runner starts a run and waits for it to finish or be interrupted.
type Runner struct {
	// Handler presents progress. If nil, output is discarded.
	Handler OutputHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Fast drives ticks from Run instead of the simulator's ticker.
	Fast bool
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Handler: NopHandler{},
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NopHandler{}
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Hooks returns lifecycle hooks that forward run events to the handler.
// Install them on the simulator passed to Run.
func (r *Runner) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			if err := r.Handler.Started(ctx, e); err != nil {
				r.Logger.Warn("runner: output failed", "event", e.Type, "error", err)
			}
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			if err := r.Handler.Tick(ctx, e); err != nil {
				r.Logger.Warn("runner: output failed", "event", e.Type, "error", err)
			}
		},
		OnAbandon: func(ctx context.Context, e *domain.CustomerEvent) {
			if err := r.Handler.Abandon(ctx, e); err != nil {
				r.Logger.Warn("runner: output failed", "event", e.Type, "error", err)
			}
		},
	}
}

// Run starts req on sim and blocks until the run finishes, fails, or ctx is
// cancelled. Cancellation stops the run and is not an error: the result is
// marked Stopped and summarizes what completed so far.
func (r *Runner) Run(ctx context.Context, sim Simulator, req StartRequest) (Result, error) {
	if err := sim.Start(ctx, &req.Persona, &req.Funnel, req.Customers, req.Speed); err != nil {
		return Result{}, err
	}

	stopped, err := r.wait(ctx, sim)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:   sim.RunID(),
		Seed:    sim.Seed(),
		Ticks:   sim.Population().Tick,
		Stopped: stopped,
		Summary: sim.Summary(),
	}
	if stopped {
		_ = r.Handler.SystemOutput(ctx, "Simulation stopped")
	}
	// ctx may be cancelled; the final report must still be written.
	if err := r.Handler.Finished(context.WithoutCancel(ctx), res); err != nil {
		return res, fmt.Errorf("output error: %w", err)
	}
	r.Logger.Debug("runner: run over", "run_id", res.RunID, "ticks", res.Ticks, "stopped", stopped)
	return res, nil
}

// wait returns true when the run was stopped by ctx.
func (r *Runner) wait(ctx context.Context, sim Simulator) (bool, error) {
	if r.Fast {
		for sim.Running() {
			if ctx.Err() != nil {
				return r.stop(sim)
			}
			if err := sim.Tick(ctx); err != nil {
				return false, fmt.Errorf("tick error: %w", err)
			}
		}
		return false, sim.Err()
	}

	select {
	case <-sim.Done():
		return false, sim.Err()
	case <-ctx.Done():
		r.Logger.Debug("runner: context cancelled", "err", ctx.Err())
		return r.stop(sim)
	}
}

func (r *Runner) stop(sim Simulator) (bool, error) {
	err := sim.Stop()
	if errors.Is(err, domain.ErrNotRunning) {
		// The run finished before the stop landed.
		return false, sim.Err()
	}
	return true, err
}
