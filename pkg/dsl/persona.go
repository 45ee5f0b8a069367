package dsl

import (
	"fmt"

	"github.com/aretw0/impulse/internal/ids"
	"github.com/aretw0/impulse/pkg/domain"
)

// PersonaBuilder provides a fluent API for configuring a persona.
// Unset traits default to a neutral profile.
type PersonaBuilder struct {
	persona domain.Persona
}

// Persona starts a new persona definition.
func Persona(name string) *PersonaBuilder {
	return &PersonaBuilder{persona: domain.Persona{
		Name: name,
		Traits: domain.Traits{
			Patience:         5,
			DistractionProne: 5,
			Budget:           domain.LevelMedium,
			TechSavviness:    domain.LevelMedium,
		},
	}}
}

func (p *PersonaBuilder) ID(id string) *PersonaBuilder {
	p.persona.ID = id
	return p
}

func (p *PersonaBuilder) Emoji(e string) *PersonaBuilder {
	p.persona.Emoji = e
	return p
}

func (p *PersonaBuilder) Patience(n int) *PersonaBuilder {
	p.persona.Traits.Patience = n
	return p
}

func (p *PersonaBuilder) DistractionProne(n int) *PersonaBuilder {
	p.persona.Traits.DistractionProne = n
	return p
}

func (p *PersonaBuilder) Budget(l domain.Level) *PersonaBuilder {
	p.persona.Traits.Budget = l
	return p
}

func (p *PersonaBuilder) TechSavviness(l domain.Level) *PersonaBuilder {
	p.persona.Traits.TechSavviness = l
	return p
}

// Describe sets the descriptive traits the abandonment model does not read.
func (p *PersonaBuilder) Describe(mood, intent, urgency string) *PersonaBuilder {
	p.persona.Traits.Mood = mood
	p.persona.Traits.Intent = intent
	p.persona.Traits.Urgency = urgency
	return p
}

// Build validates and returns the persona.
func (p *PersonaBuilder) Build() (domain.Persona, error) {
	out := p.persona
	if out.ID == "" {
		out.ID = ids.New("persona", out.Name)
	}
	if err := out.Validate(); err != nil {
		return domain.Persona{}, fmt.Errorf("failed to build persona %q: %w", out.Name, err)
	}
	return out, nil
}
