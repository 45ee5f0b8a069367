/*
Package runner drives a simulator in the foreground and streams its progress.

It is the bridge between the run controller and the outside world: a Runner
starts a run, forwards every committed tick to a pluggable OutputHandler,
stops the run when its context is cancelled (for example on SIGINT via a
SignalManager) and returns the final analytics summary.

# Key Components

  - Runner: starts a run and waits for it to finish or be interrupted.
  - OutputHandler: decouples how progress is presented (text, NDJSON).
  - TextHandler: coloured progress lines for interactive terminals.
  - JSONHandler: one JSON object per line for scripts and pipes.
  - Simulate: fast-forwards a run without a wall clock.

# Usage

	r := runner.NewRunner(runner.WithHandler(runner.NewTextHandler(os.Stdout)))
	sim := impulse.New(impulse.WithLifecycleHooks(r.Hooks()))

	res, err := r.Run(ctx, sim, runner.StartRequest{
		Persona:   persona,
		Funnel:    funnel,
		Customers: 50,
		Speed:     1,
	})
*/
package runner
