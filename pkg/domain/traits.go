package domain

import "fmt"

// Level is a three-step qualitative rating used by budget and tech savviness.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Trait names a persona attribute that a trigger can be sensitive to.
type Trait string

const (
	TraitPatience         Trait = "patience"
	TraitDistractionProne Trait = "distractionProne"
	TraitBudget           Trait = "budget"
	TraitTechSavviness    Trait = "techSavviness"
	TraitMood             Trait = "mood"
	TraitIntent           Trait = "intent"
	TraitUrgency          Trait = "urgency"
)

// Valid reports whether t is a known trait name.
func (t Trait) Valid() bool {
	switch t {
	case TraitPatience, TraitDistractionProne, TraitBudget, TraitTechSavviness,
		TraitMood, TraitIntent, TraitUrgency:
		return true
	}
	return false
}

// Score bounds for the numeric traits.
const (
	MinScore = 1
	MaxScore = 10
)

// Traits is the behavioral profile carried by a persona and copied into every
// customer spawned from it.
//
// Mood, Intent and Urgency are descriptive only; the abandonment model does not
// read them.
type Traits struct {
	Patience         int    `json:"patience" yaml:"patience" mapstructure:"patience"`
	DistractionProne int    `json:"distractionProne" yaml:"distractionProne" mapstructure:"distractionProne"`
	Budget           Level  `json:"budget" yaml:"budget" mapstructure:"budget"`
	TechSavviness    Level  `json:"techSavviness" yaml:"techSavviness" mapstructure:"techSavviness"`
	Mood             string `json:"mood,omitempty" yaml:"mood,omitempty" mapstructure:"mood"`
	Intent           string `json:"intent,omitempty" yaml:"intent,omitempty" mapstructure:"intent"`
	Urgency          string `json:"urgency,omitempty" yaml:"urgency,omitempty" mapstructure:"urgency"`
}

// Validate checks the numeric ranges and enum values.
func (t Traits) Validate() error {
	if t.Patience < MinScore || t.Patience > MaxScore {
		return &ConfigError{Field: "patience", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinScore, MaxScore, t.Patience)}
	}
	if t.DistractionProne < MinScore || t.DistractionProne > MaxScore {
		return &ConfigError{Field: "distractionProne", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinScore, MaxScore, t.DistractionProne)}
	}
	if !t.Budget.Valid() {
		return &ConfigError{Field: "budget", Reason: fmt.Sprintf("unknown level %q", t.Budget)}
	}
	if !t.TechSavviness.Valid() {
		return &ConfigError{Field: "techSavviness", Reason: fmt.Sprintf("unknown level %q", t.TechSavviness)}
	}
	return nil
}
