package observability

import (
	"fmt"
	"sync"

	"github.com/aretw0/impulse/pkg/domain"
)

// Aggregator accumulates the outcomes of a run.
//
// Outcomes only enter through Apply, which commits one tick's transitions
// under a single lock. Snapshot therefore observes either the pre-tick or the
// post-tick aggregate, never a partially applied tick.
type Aggregator struct {
	mu  sync.RWMutex
	agg domain.Aggregate
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Apply records every terminal outcome in transitions.
//
// A completion or abandonment whose customer was not active before the tick
// is a duplicate terminal transition; the whole batch is rejected and nothing
// is recorded.
func (a *Aggregator) Apply(transitions []domain.Transition) error {
	for _, t := range transitions {
		switch t.Kind {
		case domain.TransitionComplete, domain.TransitionAbandon:
			if t.Before.Status != domain.StatusActive {
				return &domain.InvariantViolation{
					Op:     "aggregate",
					Detail: fmt.Sprintf("customer %q already %s", t.Before.ID, t.Before.Status),
				}
			}
			if t.Kind == domain.TransitionAbandon && t.Record == nil {
				return &domain.InvariantViolation{
					Op:     "aggregate",
					Detail: fmt.Sprintf("abandonment of customer %q has no record", t.Before.ID),
				}
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range transitions {
		switch t.Kind {
		case domain.TransitionComplete:
			a.recordCompletion()
		case domain.TransitionAbandon:
			a.recordAbandonment(*t.Record)
		}
	}
	return nil
}

func (a *Aggregator) recordCompletion() {
	a.agg.Completions++
}

func (a *Aggregator) recordAbandonment(rec domain.AbandonmentRecord) {
	a.agg.Abandonments = append(a.agg.Abandonments, rec)
}

// Snapshot returns a copy of the current aggregate.
func (a *Aggregator) Snapshot() domain.Aggregate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.agg.Clone()
}

// Reset clears all recorded outcomes. Called on run start.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.agg = domain.Aggregate{}
}
