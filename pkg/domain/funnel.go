package domain

import (
	"fmt"
	"slices"
)

// Friction bounds for Step.FrictionLevel.
const (
	MinFriction = 1
	MaxFriction = 10
)

// Step is one stage of a funnel.
type Step struct {
	ID   string `json:"id" yaml:"id,omitempty" mapstructure:"id"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`

	// FrictionLevel is editable and validated but not read by the
	// abandonment model.
	FrictionLevel int `json:"friction" yaml:"friction" mapstructure:"friction"`

	// Triggers are evaluated in slice order; the first one that fires wins.
	Triggers []Trigger `json:"triggers" yaml:"triggers,omitempty" mapstructure:"triggers"`
}

// Trigger returns the trigger of the given kind, if present.
func (s Step) Trigger(kind TriggerKind) (Trigger, bool) {
	for _, t := range s.Triggers {
		if t.Kind == kind {
			return t, true
		}
	}
	return Trigger{}, false
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	if s.Triggers == nil {
		return out
	}
	out.Triggers = make([]Trigger, len(s.Triggers))
	for i, t := range s.Triggers {
		t.SensitiveTraits = slices.Clone(t.SensitiveTraits)
		out.Triggers[i] = t
	}
	return out
}

// Validate checks the step and rejects duplicate trigger kinds.
func (s Step) Validate() error {
	if s.ID == "" {
		return &ConfigError{Field: "step.id", Reason: fmt.Sprintf("step %q has no id", s.Name)}
	}
	if s.FrictionLevel < MinFriction || s.FrictionLevel > MaxFriction {
		return &ConfigError{Field: "step.friction", Reason: fmt.Sprintf("step %q friction %d outside [%d, %d]", s.ID, s.FrictionLevel, MinFriction, MaxFriction)}
	}
	seen := make(map[TriggerKind]bool, len(s.Triggers))
	for _, t := range s.Triggers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.ID, err)
		}
		if seen[t.Kind] {
			return &ConfigError{Field: "step.triggers", Reason: fmt.Sprintf("step %q declares trigger %q more than once", s.ID, t.Kind)}
		}
		seen[t.Kind] = true
	}
	return nil
}

// Funnel is the ordered sequence of steps a customer must traverse.
type Funnel struct {
	ID    string `json:"id" yaml:"id,omitempty" mapstructure:"id"`
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Steps []Step `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// Clone returns a structural deep copy; edits to the copy never reach f.
func (f Funnel) Clone() Funnel {
	out := f
	if f.Steps == nil {
		return out
	}
	out.Steps = make([]Step, len(f.Steps))
	for i, s := range f.Steps {
		out.Steps[i] = s.Clone()
	}
	return out
}

// StepIndex returns the position of the step with the given id, or -1.
func (f Funnel) StepIndex(stepID string) int {
	return slices.IndexFunc(f.Steps, func(s Step) bool { return s.ID == stepID })
}

// Step returns the step with the given id.
func (f Funnel) Step(stepID string) (Step, bool) {
	i := f.StepIndex(stepID)
	if i < 0 {
		return Step{}, false
	}
	return f.Steps[i], true
}

// Validate enforces the funnel invariants: at least one step, unique step ids,
// and valid steps.
func (f Funnel) Validate() error {
	if len(f.Steps) == 0 {
		return &ConfigError{Field: "funnel.steps", Reason: fmt.Sprintf("funnel %q has no steps", f.Name)}
	}
	ids := make(map[string]bool, len(f.Steps))
	for _, s := range f.Steps {
		if err := s.Validate(); err != nil {
			return err
		}
		if ids[s.ID] {
			return &ConfigError{Field: "step.id", Reason: fmt.Sprintf("duplicate step id %q", s.ID)}
		}
		ids[s.ID] = true
	}
	return nil
}
