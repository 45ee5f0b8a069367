package domain

import (
	"math"
	"slices"
	"time"
)

// AbandonmentRecord is appended to the run aggregate when a customer abandons.
type AbandonmentRecord struct {
	StepID    string      `json:"step_id"`
	Reason    TriggerKind `json:"reason"`
	PersonaID string      `json:"persona_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// Aggregate is the read-only outcome snapshot of the current (or last) run.
type Aggregate struct {
	Completions  int                 `json:"completions"`
	Abandonments []AbandonmentRecord `json:"abandonments"`
}

// Total is the number of customers that reached a terminal state.
func (a Aggregate) Total() int {
	return a.Completions + len(a.Abandonments)
}

// Clone returns a copy that shares no memory with a.
func (a Aggregate) Clone() Aggregate {
	return Aggregate{
		Completions:  a.Completions,
		Abandonments: slices.Clone(a.Abandonments),
	}
}

// TransitionKind classifies what happened to a customer during one tick.
type TransitionKind string

const (
	TransitionNone     TransitionKind = "none"     // terminal customer, skipped
	TransitionDwell    TransitionKind = "dwell"    // still inside the current step
	TransitionAdvance  TransitionKind = "advance"  // moved to the next step
	TransitionComplete TransitionKind = "complete" // left the last step
	TransitionAbandon  TransitionKind = "abandon"  // a trigger fired
)

// Transition is the result of advancing one customer by one tick.
type Transition struct {
	Kind   TransitionKind
	Before Customer
	After  Customer

	// Record is set only for TransitionAbandon.
	Record *AbandonmentRecord
}

// CustomerView is the per-customer slice of a population snapshot.
type CustomerView struct {
	ID            string      `json:"id"`
	CurrentStepID string      `json:"current_step_id"`
	Status        Status      `json:"status"`
	Reason        TriggerKind `json:"reason,omitempty"`
}

// PopulationSnapshot is the live view of a running population.
type PopulationSnapshot struct {
	Tick      int            `json:"tick"`
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	Abandoned int            `json:"abandoned"`
	Customers []CustomerView `json:"customers"`
}

// Snapshot builds a population view of customers against funnel.
func Snapshot(tick int, funnel Funnel, customers []Customer) PopulationSnapshot {
	snap := PopulationSnapshot{
		Tick:      tick,
		Customers: make([]CustomerView, 0, len(customers)),
	}
	for _, c := range customers {
		switch c.Status {
		case StatusActive:
			snap.Active++
		case StatusCompleted:
			snap.Completed++
		case StatusAbandoned:
			snap.Abandoned++
		}
		view := CustomerView{ID: c.ID, Status: c.Status, Reason: c.Reason}
		if c.StepIndex >= 0 && c.StepIndex < len(funnel.Steps) {
			view.CurrentStepID = funnel.Steps[c.StepIndex].ID
		}
		snap.Customers = append(snap.Customers, view)
	}
	return snap
}

// ValidSpeed reports whether v is a usable run speed: finite and positive.
func ValidSpeed(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Recommended, non-binding bounds for run configuration.
var (
	RecommendedCustomerRange = [2]int{1, 50}
	RecommendedSpeedRange    = [2]float64{0.5, 2.0}
)
