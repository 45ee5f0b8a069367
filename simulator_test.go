package impulse_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/pkg/domain"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

func impatientBuyer() domain.Persona {
	return domain.Persona{
		ID:   "impatient",
		Name: "Impatient Buyer",
		Traits: domain.Traits{
			Patience: 2, DistractionProne: 6,
			Budget: domain.LevelHigh, TechSavviness: domain.LevelLow,
		},
	}
}

func productFunnel() domain.Funnel {
	return domain.Funnel{ID: "product-page", Name: "Product Page", Steps: []domain.Step{
		{ID: "landing", Name: "Landing", FrictionLevel: 3, Triggers: []domain.Trigger{
			domain.NewTrigger(domain.TriggerUX, 0.1, domain.TraitPatience, domain.TraitTechSavviness),
			domain.NewTrigger(domain.TriggerDistraction, 0.15, domain.TraitDistractionProne),
		}},
		{ID: "checkout", Name: "Checkout", FrictionLevel: 5, Triggers: []domain.Trigger{
			domain.NewTrigger(domain.TriggerPrice, 0.3, domain.TraitBudget),
			domain.NewTrigger(domain.TriggerTechnical, 0.1, domain.TraitTechSavviness),
		}},
		{ID: "confirmation", Name: "Confirmation", FrictionLevel: 1},
	}}
}

func frictionless(steps int) domain.Funnel {
	f := domain.Funnel{ID: "smooth"}
	for i := range steps {
		f.Steps = append(f.Steps, domain.Step{ID: string(rune('a' + i)), FrictionLevel: 1})
	}
	return f
}

// runToEnd ticks a manual simulator until its run finishes and returns the
// number of ticks applied.
func runToEnd(t *testing.T, sim *impulse.Simulator) int {
	t.Helper()
	ticks := 0
	for sim.Running() {
		require.NoError(t, sim.Tick(context.Background()))
		ticks++
		require.Less(t, ticks, 10_000, "run never finished")
	}
	return ticks
}

func TestSimulator_StartRejectsInvalidConfiguration(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()
	empty := domain.Funnel{ID: "empty"}
	badPersona := impatientBuyer()
	badPersona.Traits.Patience = 11

	tests := []struct {
		name    string
		persona *domain.Persona
		funnel  *domain.Funnel
		count   int
		speed   float64
	}{
		{"missing persona", nil, &funnel, 5, 1},
		{"missing funnel", &persona, nil, 5, 1},
		{"empty funnel", &persona, &empty, 5, 1},
		{"zero customers", &persona, &funnel, 0, 1},
		{"negative customers", &persona, &funnel, -3, 1},
		{"zero speed", &persona, &funnel, 5, 0},
		{"nan speed", &persona, &funnel, 5, math.NaN()},
		{"infinite speed", &persona, &funnel, 5, math.Inf(1)},
		{"invalid persona", &badPersona, &funnel, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := impulse.New(impulse.WithManualTicks())
			err := sim.Start(context.Background(), tt.persona, tt.funnel, tt.count, tt.speed)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
			assert.False(t, sim.Running())
		})
	}
}

func TestSimulator_Conservation(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()

	for _, seed := range []uint64{1, 2, 3, 42, 1337} {
		sim := impulse.New(impulse.WithManualTicks(), impulse.WithSeed(seed))
		require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 50, 1))
		runToEnd(t, sim)

		agg := sim.Aggregate()
		assert.Equal(t, 50, agg.Completions+len(agg.Abandonments), "seed %d", seed)

		pop := sim.Population()
		assert.Zero(t, pop.Active)
		assert.Equal(t, agg.Completions, pop.Completed)
		assert.Equal(t, len(agg.Abandonments), pop.Abandoned)

		select {
		case <-sim.Done():
		default:
			t.Fatal("Done must be closed after the run finishes")
		}
		assert.NoError(t, sim.Err())
	}
}

func TestSimulator_SameSeedSameOutcome(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()

	run := func(parallelism int) domain.Aggregate {
		sim := impulse.New(
			impulse.WithManualTicks(),
			impulse.WithSeed(99),
			impulse.WithClock(fixedClock),
			impulse.WithParallelism(parallelism),
		)
		require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 40, 1.5))
		runToEnd(t, sim)
		return sim.Aggregate()
	}

	first := run(1)
	assert.Equal(t, first, run(1))
	assert.Equal(t, first, run(6))
}

func TestSimulator_SpeedScalesRunLength(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(3)

	sim := impulse.New(impulse.WithManualTicks())
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 5, 1))
	assert.Equal(t, 30, runToEnd(t, sim))
	assert.Equal(t, 5, sim.Aggregate().Completions)

	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 5, 2))
	assert.Equal(t, 15, runToEnd(t, sim))
}

func TestSimulator_SetSpeedTakesEffectNextTick(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(1)

	sim := impulse.New(impulse.WithManualTicks())
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 1, 1))
	for range 5 {
		require.NoError(t, sim.Tick(context.Background()))
	}
	require.NoError(t, sim.SetSpeed(2))
	assert.Equal(t, 2.0, sim.Speed())

	// 0.5 elapsed + 0.2 per tick reaches 1 after three more ticks.
	assert.Equal(t, 3, runToEnd(t, sim))

	assert.ErrorIs(t, sim.SetSpeed(0), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, sim.SetSpeed(-1), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, sim.SetSpeed(math.NaN()), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, sim.SetSpeed(math.Inf(1)), domain.ErrInvalidConfiguration)
	assert.Equal(t, 2.0, sim.Speed())
}

func TestSimulator_RunActiveGuards(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()

	sim := impulse.New(impulse.WithManualTicks())
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 3, 1))

	assert.ErrorIs(t, sim.Start(context.Background(), &persona, &funnel, 3, 1), domain.ErrRunActive)
	assert.ErrorIs(t, sim.SetCustomerCount(7), domain.ErrRunActive)
	assert.Equal(t, 3, sim.CustomerCount())

	require.NoError(t, sim.Stop())
	require.NoError(t, sim.SetCustomerCount(7))
	assert.Equal(t, 7, sim.CustomerCount())
	assert.ErrorIs(t, sim.SetCustomerCount(0), domain.ErrInvalidConfiguration)
}

func TestSimulator_StopKeepsAggregate(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()

	sim := impulse.New(impulse.WithManualTicks(), impulse.WithSeed(5))
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 20, 1))
	for range 25 {
		require.NoError(t, sim.Tick(context.Background()))
	}
	before := sim.Aggregate()
	popBefore := sim.Population()

	require.NoError(t, sim.Stop())
	assert.False(t, sim.Running())
	assert.Equal(t, before, sim.Aggregate())
	assert.Equal(t, popBefore, sim.Population())

	assert.ErrorIs(t, sim.Stop(), domain.ErrNotRunning)
	assert.ErrorIs(t, sim.Tick(context.Background()), domain.ErrNotRunning)
	assert.Equal(t, before, sim.Aggregate())
}

func TestSimulator_StartResetsAggregate(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(1)

	sim := impulse.New(impulse.WithManualTicks())
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 4, 1))
	runToEnd(t, sim)
	require.Equal(t, 4, sim.Aggregate().Completions)

	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 2, 1))
	assert.Zero(t, sim.Aggregate().Total())
	runToEnd(t, sim)
	assert.Equal(t, 2, sim.Aggregate().Completions)
}

func TestSimulator_FunnelIsCopiedAtStart(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(1)

	sim := impulse.New(impulse.WithManualTicks())
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 2, 1))

	funnel.Steps[0].Triggers = []domain.Trigger{domain.NewTrigger(domain.TriggerPrice, 0.9)}
	persona.Traits.Budget = domain.LevelLow

	runToEnd(t, sim)
	assert.Equal(t, 2, sim.Aggregate().Completions)
}

func TestSimulator_HooksFire(t *testing.T) {
	persona := impatientBuyer()
	funnel := productFunnel()

	var starts, finishes, ticks, completes, abandons, advances int
	hooks := domain.LifecycleHooks{
		OnRunStart:  func(context.Context, *domain.RunEvent) { starts++ },
		OnRunFinish: func(context.Context, *domain.RunEvent) { finishes++ },
		OnTick:      func(context.Context, *domain.TickEvent) { ticks++ },
		OnAdvance:   func(context.Context, *domain.CustomerEvent) { advances++ },
		OnComplete:  func(context.Context, *domain.CustomerEvent) { completes++ },
		OnAbandon: func(_ context.Context, e *domain.CustomerEvent) {
			abandons++
			assert.NotEmpty(t, e.StepID)
			assert.True(t, e.Reason.Valid())
		},
	}

	sim := impulse.New(impulse.WithManualTicks(), impulse.WithSeed(11), impulse.WithLifecycleHooks(hooks))
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 30, 1))
	n := runToEnd(t, sim)

	agg := sim.Aggregate()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, finishes)
	assert.Equal(t, n, ticks)
	assert.Equal(t, agg.Completions, completes)
	assert.Equal(t, len(agg.Abandonments), abandons)
	assert.Positive(t, advances)
}

func TestSimulator_TickerDrivesLoop(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(1)
	ticker := impulse.NewManualTicker()

	sim := impulse.New(impulse.WithTicker(func(time.Duration) impulse.Ticker { return ticker }))
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 3, 1))

	for range 10 {
		require.True(t, ticker.Fire())
	}

	select {
	case <-sim.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish after ten ticks")
	}
	assert.Equal(t, 3, sim.Aggregate().Completions)
	assert.False(t, ticker.Fire(), "loop must stop its ticker when the run finishes")
}

func TestSimulator_StopHaltsLoop(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(2)
	ticker := impulse.NewManualTicker()

	sim := impulse.New(impulse.WithTicker(func(time.Duration) impulse.Ticker { return ticker }))
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 3, 1))
	require.True(t, ticker.Fire())

	require.NoError(t, sim.Stop())
	assert.False(t, ticker.Fire())
	assert.Zero(t, sim.Aggregate().Total())
	<-sim.Done()
}

func TestSimulator_HookStopsRunAsynchronously(t *testing.T) {
	persona := impatientBuyer()
	funnel := frictionless(5)

	var sim *impulse.Simulator
	stopped := make(chan error, 1)
	hooks := domain.LifecycleHooks{
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			if e.Tick == 3 {
				go func() { stopped <- sim.Stop() }()
			}
		},
	}

	sim = impulse.New(impulse.WithManualTicks(), impulse.WithLifecycleHooks(hooks))
	require.NoError(t, sim.Start(context.Background(), &persona, &funnel, 2, 1))
	for range 3 {
		require.NoError(t, sim.Tick(context.Background()))
	}

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stop requested from a hook never completed")
	}
	<-sim.Done()
	assert.False(t, sim.Running())
	assert.Zero(t, sim.Aggregate().Total())
	assert.Equal(t, 2, sim.Population().Active)
}
