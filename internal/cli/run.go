package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/internal/config"
	"github.com/aretw0/impulse/internal/presentation/tui"
	"github.com/aretw0/impulse/pkg/observability"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config  *config.Config
	Persona DefinitionRef
	Funnel  DefinitionRef

	// Zero values fall back to Config.
	Customers int
	Speed     float64
	// Seed pins the run when set; nil draws a fresh seed.
	Seed *uint64

	Fast  bool
	JSON  bool
	Quiet bool
	// Every prints a progress line at least every N ticks.
	Every int
}

// Execute runs one simulation in the foreground and writes its progress
// and report to out. Cancelling ctx stops the run and still reports it.
func Execute(ctx context.Context, opts RunOptions, out io.Writer) (runner.Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := createLogger(cfg.Log.Level)

	var store ports.DefinitionStore
	if opts.Persona.needsStore() || opts.Funnel.needsStore() {
		s, closeStore, err := OpenStore(ctx, cfg.Store)
		if err != nil {
			return runner.Result{}, err
		}
		defer closeStore()
		store = s
	}

	persona, err := resolvePersona(ctx, store, opts.Persona)
	if err != nil {
		return runner.Result{}, fmt.Errorf("persona: %w", err)
	}
	funnel, err := resolveFunnel(ctx, store, opts.Funnel)
	if err != nil {
		return runner.Result{}, fmt.Errorf("funnel: %w", err)
	}

	req := runner.StartRequest{
		Persona:   persona,
		Funnel:    funnel,
		Customers: cfg.Simulation.Customers,
		Speed:     cfg.Simulation.Speed,
	}
	if opts.Customers != 0 {
		req.Customers = opts.Customers
	}
	if opts.Speed != 0 {
		req.Speed = opts.Speed
	}

	handler := createHandler(opts, out)

	simOpts := cfg.SimulatorOptions()
	simOpts = append(simOpts,
		impulse.WithLogger(logger),
		impulse.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if opts.Seed != nil {
		simOpts = append(simOpts, impulse.WithSeed(*opts.Seed))
	}

	if opts.Fast {
		return runner.Simulate(ctx, req, handler, simOpts...)
	}

	r := runner.NewRunner(runner.WithHandler(handler), runner.WithLogger(logger))
	sim := impulse.New(append(simOpts, impulse.WithLifecycleHooks(r.Hooks()))...)
	return r.Run(ctx, sim, req)
}

func createHandler(opts RunOptions, out io.Writer) runner.OutputHandler {
	if opts.JSON {
		return runner.NewJSONHandler(out, !opts.Quiet)
	}

	handlerOpts := []runner.TextHandlerOption{
		runner.WithTextHandlerQuiet(opts.Quiet),
		runner.WithTextHandlerEvery(opts.Every),
	}
	if f, ok := terminal(out); ok {
		if tui.IsTerminal(f) && !opts.Quiet {
			tui.PrintBanner(out)
		}
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer(f)))
	}
	return runner.NewTextHandler(out, handlerOpts...)
}

// RunAndReport wraps Execute for the command layer: interruptions are not
// errors.
func RunAndReport(ctx context.Context, opts RunOptions, out io.Writer) error {
	_, err := Execute(ctx, opts, out)
	return handleExecutionError(err)
}
