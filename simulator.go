package impulse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/impulse/internal/random"
	"github.com/aretw0/impulse/internal/runtime"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
)

// DefaultTickInterval is the wall-clock period between ticks. At speed 1 a
// customer spends about one second in every step.
const DefaultTickInterval = 100 * time.Millisecond

// Simulator is the run controller. It owns the customer population and the
// outcome aggregate of the current run and drives them with a ticker.
//
// All methods are safe for concurrent use. Readers get copies and never
// observe a partially applied tick.
type Simulator struct {
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	aggregator  *observability.Aggregator
	newTicker   func(time.Duration) Ticker
	interval    time.Duration
	manual      bool
	now         func() time.Time
	pinnedSeed  *uint64
	parallelism int

	// tickMu serializes ticks and run teardown.
	tickMu sync.Mutex

	mu            sync.RWMutex
	running       bool
	runID         string
	seed          uint64
	persona       domain.Persona
	funnel        domain.Funnel
	population    []domain.Customer
	streams       []runtime.RandomSource
	speed         float64
	customerCount int
	tick          int
	last          domain.PopulationSnapshot
	err           error
	cancel        context.CancelFunc
	done          chan struct{}
	loopDone      chan struct{}
}

// Option defines a functional option for configuring the Simulator.
type Option func(*Simulator)

// WithLogger sets a custom structured logger for the simulator.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add to
// the hooks already registered.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) {
		s.hooks = observability.ChainHooks(s.hooks, hooks)
	}
}

// WithSeed pins the seed used to derive every customer's random stream.
// Without it each run draws a fresh seed.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.pinnedSeed = &seed
	}
}

// WithTickInterval sets the wall-clock period between ticks.
func WithTickInterval(d time.Duration) Option {
	return func(s *Simulator) {
		s.interval = d
	}
}

// WithTicker replaces the ticker factory. Tests use it to drive ticks by hand.
func WithTicker(factory func(time.Duration) Ticker) Option {
	return func(s *Simulator) {
		s.newTicker = factory
	}
}

// WithManualTicks disables the background loop; the caller advances the run
// with Tick. Used for headless fast-forward.
func WithManualTicks() Option {
	return func(s *Simulator) {
		s.manual = true
	}
}

// WithClock sets the time source used for abandonment timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// WithParallelism evaluates up to n customers concurrently inside a tick.
func WithParallelism(n int) Option {
	return func(s *Simulator) {
		s.parallelism = n
	}
}

// New creates an idle simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		aggregator:    observability.NewAggregator(),
		newTicker:     NewTimeTicker,
		interval:      DefaultTickInterval,
		now:           time.Now,
		parallelism:   1,
		speed:         1,
		customerCount: 10,
		done:          closedChan(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Start validates the configuration, resets the aggregate, spawns
// customerCount customers from persona and begins ticking.
//
// Configuration problems are reported as domain.ErrInvalidConfiguration and
// leave the simulator untouched. Starting while a run is active returns
// domain.ErrRunActive.
func (s *Simulator) Start(ctx context.Context, persona *domain.Persona, funnel *domain.Funnel, customerCount int, speed float64) error {
	if err := validateStart(persona, funnel, customerCount, speed); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	seed, source, err := random.ResolveSeed(s.pinnedSeed, nil)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("start: %w", domain.ErrRunActive)
	}

	s.runID = uuid.NewString()
	s.seed = seed
	s.persona = *persona
	s.funnel = funnel.Clone()
	s.speed = speed
	s.customerCount = customerCount
	s.tick = 0
	s.err = nil
	s.population = make([]domain.Customer, customerCount)
	for i := range s.population {
		s.population[i] = domain.NewCustomer(fmt.Sprintf("customer-%d", i+1), s.persona)
	}
	s.streams = runtime.NewStreams(seed, customerCount)
	s.aggregator.Reset()
	s.last = domain.Snapshot(0, s.funnel, s.population)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	s.loopDone = nil
	s.running = true
	if !s.manual {
		s.loopDone = make(chan struct{})
		go s.loop(loopCtx, s.newTicker(s.interval), s.loopDone)
	}
	ev := s.runEvent(domain.EventRunStart)
	s.mu.Unlock()

	s.warnOutsideRecommended(customerCount, speed)
	s.logger.Info("simulation started",
		"run_id", ev.RunID,
		"funnel_id", ev.FunnelID,
		"persona_id", ev.PersonaID,
		"customers", customerCount,
		"speed", speed,
		"seed", seed,
		"seed_source", source,
	)
	if s.hooks.OnRunStart != nil {
		s.hooks.OnRunStart(ctx, ev)
	}
	return nil
}

func validateStart(persona *domain.Persona, funnel *domain.Funnel, customerCount int, speed float64) error {
	if persona == nil {
		return &domain.ConfigError{Field: "persona", Reason: "persona is required"}
	}
	if funnel == nil {
		return &domain.ConfigError{Field: "funnel", Reason: "funnel is required"}
	}
	if len(funnel.Steps) == 0 {
		return &domain.ConfigError{Field: "funnel.steps", Reason: "funnel has no steps"}
	}
	if customerCount < 1 {
		return &domain.ConfigError{Field: "customerCount", Reason: fmt.Sprintf("must be at least 1, got %d", customerCount)}
	}
	if !domain.ValidSpeed(speed) {
		return &domain.ConfigError{Field: "speed", Reason: fmt.Sprintf("must be positive and finite, got %v", speed)}
	}
	if err := persona.Validate(); err != nil {
		return err
	}
	return funnel.Validate()
}

func (s *Simulator) warnOutsideRecommended(customerCount int, speed float64) {
	if r := domain.RecommendedCustomerRange; customerCount < r[0] || customerCount > r[1] {
		s.logger.Warn("customer count outside recommended range", "customers", customerCount, "min", r[0], "max", r[1])
	}
	if r := domain.RecommendedSpeedRange; speed < r[0] || speed > r[1] {
		s.logger.Warn("speed outside recommended range", "speed", speed, "min", r[0], "max", r[1])
	}
}

func (s *Simulator) loop(ctx context.Context, ticker Ticker, loopDone chan struct{}) {
	defer close(loopDone)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// Stop may have raced with this tick; it wins.
			if ctx.Err() != nil {
				return
			}
			if err := s.Tick(ctx); err != nil {
				return
			}
			if !s.Running() {
				return
			}
		}
	}
}

// Stop halts ticking before the next scheduled tick. An in-flight tick runs
// to completion, hooks included, so Stop must not be called synchronously
// from a lifecycle hook. The aggregate is kept; the population is released.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("stop: %w", domain.ErrNotRunning)
	}
	cancel, loopDone := s.cancel, s.loopDone
	s.mu.Unlock()

	cancel()
	if loopDone != nil {
		<-loopDone
	}

	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if !s.running {
		// Finished on its own while we waited.
		s.mu.Unlock()
		return nil
	}
	ev, done := s.teardown(domain.EventRunStop)
	tick := s.tick
	s.mu.Unlock()
	defer close(done)

	s.logger.Info("simulation stopped", "run_id", ev.RunID, "tick", tick)
	if s.hooks.OnRunStop != nil {
		s.hooks.OnRunStop(context.Background(), ev)
	}
	return nil
}

// teardown ends the current run. Callers hold s.mu and close the returned
// channel once the run's last hooks have fired, so Done never fires before
// the final events are delivered.
func (s *Simulator) teardown(typ domain.EventType) (*domain.RunEvent, chan struct{}) {
	ev := s.runEvent(typ)
	s.last = domain.Snapshot(s.tick, s.funnel, s.population)
	s.running = false
	s.population = nil
	s.streams = nil
	s.cancel()
	return ev, s.done
}

func (s *Simulator) runEvent(typ domain.EventType) *domain.RunEvent {
	return &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: s.now(), Type: typ, RunID: s.runID},
		FunnelID:  s.funnel.ID,
		PersonaID: s.persona.ID,
		Customers: s.customerCount,
		Speed:     s.speed,
	}
}

// Tick applies exactly one atomic tick to the population.
//
// Transitions are computed from a snapshot taken under the read lock, then
// the new population and every terminal outcome are committed together. When
// no active customers remain the run finishes on its own. An invariant
// violation aborts the tick without committing anything and ends the run;
// the error is also kept for Err.
func (s *Simulator) Tick(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.RLock()
	if !s.running {
		s.mu.RUnlock()
		return fmt.Errorf("tick: %w", domain.ErrNotRunning)
	}
	population := s.population
	streams := s.streams
	funnel := s.funnel
	speed := s.speed
	s.mu.RUnlock()

	now := s.now()
	transitions, err := runtime.TickBatch(population, funnel, speed, streams, now, s.parallelism)
	if err != nil {
		return s.fail(ctx, err)
	}

	next := make([]domain.Customer, len(transitions))
	for i, t := range transitions {
		next[i] = t.After
	}

	s.mu.Lock()
	if err := s.aggregator.Apply(transitions); err != nil {
		s.mu.Unlock()
		return s.fail(ctx, err)
	}
	s.population = next
	s.tick++
	snap := domain.Snapshot(s.tick, s.funnel, next)
	s.last = snap
	runID := s.runID
	var finished *domain.RunEvent
	if snap.Active == 0 {
		var done chan struct{}
		finished, done = s.teardown(domain.EventRunFinish)
		defer close(done)
	}
	s.mu.Unlock()

	s.emit(ctx, runID, now, funnel, transitions, snap)
	if finished != nil {
		s.logger.Info("simulation finished",
			"run_id", finished.RunID,
			"tick", snap.Tick,
			"completed", snap.Completed,
			"abandoned", snap.Abandoned,
		)
		if s.hooks.OnRunFinish != nil {
			s.hooks.OnRunFinish(ctx, finished)
		}
	}
	return nil
}

func (s *Simulator) fail(ctx context.Context, err error) error {
	s.mu.Lock()
	s.err = err
	ev, done := s.teardown(domain.EventRunStop)
	s.mu.Unlock()
	defer close(done)

	s.logger.Error("simulation aborted", "run_id", ev.RunID, "error", err)
	if s.hooks.OnRunStop != nil {
		s.hooks.OnRunStop(ctx, ev)
	}
	return fmt.Errorf("tick: %w", err)
}

func (s *Simulator) emit(ctx context.Context, runID string, now time.Time, funnel domain.Funnel, transitions []domain.Transition, snap domain.PopulationSnapshot) {
	base := func(typ domain.EventType) domain.EventBase {
		return domain.EventBase{Timestamp: now, Type: typ, RunID: runID}
	}
	for _, t := range transitions {
		var hook func(context.Context, *domain.CustomerEvent)
		var typ domain.EventType
		switch t.Kind {
		case domain.TransitionAdvance:
			hook, typ = s.hooks.OnAdvance, domain.EventAdvance
		case domain.TransitionComplete:
			hook, typ = s.hooks.OnComplete, domain.EventComplete
		case domain.TransitionAbandon:
			hook, typ = s.hooks.OnAbandon, domain.EventAbandon
		default:
			continue
		}
		if hook == nil {
			continue
		}
		hook(ctx, &domain.CustomerEvent{
			EventBase:  base(typ),
			CustomerID: t.After.ID,
			PersonaID:  t.After.PersonaID,
			StepID:     funnel.Steps[t.Before.StepIndex].ID,
			Reason:     t.After.Reason,
		})
	}

	s.logger.Debug("tick", "tick", snap.Tick, "active", snap.Active, "completed", snap.Completed, "abandoned", snap.Abandoned)
	if s.hooks.OnTick != nil {
		s.hooks.OnTick(ctx, &domain.TickEvent{EventBase: base(domain.EventTick), Tick: snap.Tick, Population: snap})
	}
}

// SetSpeed changes the speed multiplier; a running simulation uses it from
// the next tick on.
func (s *Simulator) SetSpeed(v float64) error {
	if !domain.ValidSpeed(v) {
		return fmt.Errorf("set speed: %w", &domain.ConfigError{Field: "speed", Reason: fmt.Sprintf("must be positive and finite, got %v", v)})
	}
	s.mu.Lock()
	s.speed = v
	s.mu.Unlock()

	if r := domain.RecommendedSpeedRange; v < r[0] || v > r[1] {
		s.logger.Warn("speed outside recommended range", "speed", v, "min", r[0], "max", r[1])
	}
	return nil
}

// SetCustomerCount sets the population size for the next run. The
// population of an active run is fixed, so this returns domain.ErrRunActive
// while running.
func (s *Simulator) SetCustomerCount(n int) error {
	if n < 1 {
		return fmt.Errorf("set customer count: %w", &domain.ConfigError{Field: "customerCount", Reason: fmt.Sprintf("must be at least 1, got %d", n)})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("set customer count: %w", domain.ErrRunActive)
	}
	s.customerCount = n
	return nil
}

// Speed returns the current speed multiplier.
func (s *Simulator) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

// CustomerCount returns the configured population size.
func (s *Simulator) CustomerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customerCount
}

// Aggregate returns a copy of the current (or last) run's outcomes.
func (s *Simulator) Aggregate() domain.Aggregate {
	return s.aggregator.Snapshot()
}

// Population returns the live population view, or the final view of the
// last run when idle.
func (s *Simulator) Population() domain.PopulationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.running {
		return domain.Snapshot(s.tick, s.funnel, s.population)
	}
	snap := s.last
	snap.Customers = append([]domain.CustomerView(nil), s.last.Customers...)
	return snap
}

// Summary computes the analytics view of the current (or last) run.
func (s *Simulator) Summary() observability.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return observability.Summarize(s.funnel, s.aggregator.Snapshot())
}

// Running reports whether a run is active.
func (s *Simulator) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Done returns a channel closed when the current run finishes or stops.
// When idle it returns a closed channel.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Err returns the invariant violation that aborted the last run, if any.
func (s *Simulator) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// RunID identifies the current (or last) run.
func (s *Simulator) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Seed returns the seed of the current (or last) run. Pin it with WithSeed
// to replay the run.
func (s *Simulator) Seed() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}
