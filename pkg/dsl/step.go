package dsl

import "github.com/aretw0/impulse/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step   domain.Step
	funnel *FunnelBuilder
}

// ID pins the step id instead of generating one.
func (s *StepBuilder) ID(id string) *StepBuilder {
	s.step.ID = id
	return s
}

// Type sets the descriptive step type (landing, product, cart, ...).
func (s *StepBuilder) Type(t string) *StepBuilder {
	s.step.Type = t
	return s
}

// Friction sets the step's friction level.
func (s *StepBuilder) Friction(level int) *StepBuilder {
	s.step.FrictionLevel = level
	return s
}

// Trigger appends an abandonment trigger. Triggers fire in the order they
// are added. Without traits the kind's default sensitivities are used.
func (s *StepBuilder) Trigger(kind domain.TriggerKind, probability float64, traits ...domain.Trait) *StepBuilder {
	if len(traits) == 0 {
		traits = domain.DefaultSensitiveTraits(kind)
	}
	s.step.Triggers = append(s.step.Triggers, domain.NewTrigger(kind, probability, traits...))
	return s
}

// Step finishes this step and starts the next one.
func (s *StepBuilder) Step(name string) *StepBuilder {
	return s.funnel.Step(name)
}

// Build assembles the whole funnel.
func (s *StepBuilder) Build() (domain.Funnel, error) {
	return s.funnel.Build()
}
