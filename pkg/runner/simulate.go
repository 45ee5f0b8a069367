package runner

import (
	"context"

	"github.com/aretw0/impulse"
)

// Simulate runs req to completion as fast as possible, without a wall
// clock. Extra simulator options (seed, hooks, parallelism) are applied
// before manual ticking is forced. Output goes to handler when non-nil.
func Simulate(ctx context.Context, req StartRequest, handler OutputHandler, opts ...impulse.Option) (Result, error) {
	r := NewRunner(WithHandler(handler), WithFastForward(true))

	simOpts := make([]impulse.Option, 0, len(opts)+2)
	simOpts = append(simOpts, opts...)
	simOpts = append(simOpts, impulse.WithManualTicks(), impulse.WithLifecycleHooks(r.Hooks()))
	sim := impulse.New(simOpts...)

	return r.Run(ctx, sim, req)
}

var _ Simulator = (*impulse.Simulator)(nil)
