package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunStop   EventType = "run_stop"
	EventRunFinish EventType = "run_finish"
	EventTick      EventType = "tick"
	EventAdvance   EventType = "advance"
	EventComplete  EventType = "complete"
	EventAbandon   EventType = "abandon"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent describes a run lifecycle change.
type RunEvent struct {
	EventBase
	FunnelID  string  `json:"funnel_id"`
	PersonaID string  `json:"persona_id"`
	Customers int     `json:"customers"`
	Speed     float64 `json:"speed"`
}

// TickEvent is emitted after a tick has been committed.
type TickEvent struct {
	EventBase
	Tick       int                `json:"tick"`
	Population PopulationSnapshot `json:"population"`
}

// CustomerEvent is emitted for every step change, completion or abandonment.
type CustomerEvent struct {
	EventBase
	CustomerID string      `json:"customer_id"`
	PersonaID  string      `json:"persona_id"`
	StepID     string      `json:"step_id"`
	Reason     TriggerKind `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for simulator observability.
// Hooks run on the tick goroutine after the tick is committed, while the
// tick still holds the simulator. Calling Stop or Tick from a hook
// deadlocks; a hook that wants to end the run calls `go sim.Stop()`, which
// takes effect once the tick returns.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunStop   func(context.Context, *RunEvent)
	OnRunFinish func(context.Context, *RunEvent)
	OnTick      func(context.Context, *TickEvent)
	OnAdvance   func(context.Context, *CustomerEvent)
	OnComplete  func(context.Context, *CustomerEvent)
	OnAbandon   func(context.Context, *CustomerEvent)
}
