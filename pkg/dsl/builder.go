package dsl

import (
	"fmt"

	"github.com/aretw0/impulse/internal/ids"
	"github.com/aretw0/impulse/pkg/domain"
)

// FunnelBuilder manages funnel construction.
type FunnelBuilder struct {
	funnel domain.Funnel
	steps  []*StepBuilder
}

// Funnel starts a new funnel definition.
func Funnel(name string) *FunnelBuilder {
	return &FunnelBuilder{funnel: domain.Funnel{Name: name}}
}

// ID pins the funnel id instead of generating one.
func (b *FunnelBuilder) ID(id string) *FunnelBuilder {
	b.funnel.ID = id
	return b
}

// Step appends a new step and returns its builder.
func (b *FunnelBuilder) Step(name string) *StepBuilder {
	sb := &StepBuilder{
		step:   domain.Step{Name: name},
		funnel: b,
	}
	b.steps = append(b.steps, sb)
	return sb
}

// Build assembles and validates the funnel.
func (b *FunnelBuilder) Build() (domain.Funnel, error) {
	f := b.funnel
	if f.ID == "" {
		f.ID = ids.New("funnel", f.Name)
	}
	f.Steps = make([]domain.Step, 0, len(b.steps))
	for _, sb := range b.steps {
		s := sb.step.Clone()
		if s.ID == "" {
			s.ID = ids.New("step", s.Type)
		}
		if s.FrictionLevel == 0 {
			s.FrictionLevel = domain.MinFriction
		}
		f.Steps = append(f.Steps, s)
	}

	if err := f.Validate(); err != nil {
		return domain.Funnel{}, fmt.Errorf("failed to build funnel %q: %w", f.Name, err)
	}
	return f, nil
}
