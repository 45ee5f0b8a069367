/*
Package impulse simulates how synthetic customers move through a sales funnel
and where, and why, they abandon it.

A Persona carries a trait vector (patience, distraction, budget, technical
savviness). A Funnel is an ordered list of steps, each with probabilistic
abandonment triggers (price, ux, trust, technical, distraction). The Simulator
spawns a population of customers from one persona, ticks them through the
funnel and records every completion and abandonment.

# Model

On every tick each active customer accumulates dwell time. Once a full dwell
unit has elapsed in a step, the step's triggers are evaluated in declaration
order: each trigger's probability is adjusted by the customer's traits, capped
at 0.9, and compared with one uniform draw. The first trigger that fires wins
and becomes the abandonment reason. A customer that survives the last step
completes.

Ticks are atomic: every transition in a tick is computed from the pre-tick
population and committed in one step, so readers never see half a tick.
Given a fixed seed (WithSeed) a run is fully reproducible.

# Usage

	sim := impulse.New(impulse.WithSeed(42))

	persona := presets.Personas()[0]
	funnel := presets.SimpleProductPage()

	if err := sim.Start(ctx, &persona, &funnel, 20, 1.0); err != nil {
		log.Fatal(err)
	}
	<-sim.Done()

	fmt.Println(sim.Summary().Insight)

For headless runs use WithManualTicks and drive the simulation with Tick, or
use runner.Simulate which does exactly that.
*/
package impulse
