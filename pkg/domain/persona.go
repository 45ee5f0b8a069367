package domain

import "fmt"

// Persona is a named trait template describing a class of synthetic customer.
type Persona struct {
	ID     string `json:"id" yaml:"id,omitempty" mapstructure:"id"`
	Name   string `json:"name" yaml:"name" mapstructure:"name"`
	Emoji  string `json:"emoji,omitempty" yaml:"emoji,omitempty" mapstructure:"emoji"`
	Traits Traits `json:"traits" yaml:"traits" mapstructure:"traits"`
}

// Validate checks the persona's identity and trait ranges.
func (p Persona) Validate() error {
	if p.ID == "" {
		return &ConfigError{Field: "persona.id", Reason: fmt.Sprintf("persona %q has no id", p.Name)}
	}
	if err := p.Traits.Validate(); err != nil {
		return fmt.Errorf("persona %q: %w", p.ID, err)
	}
	return nil
}
