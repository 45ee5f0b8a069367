package domain

import (
	"fmt"
	"math"
	"slices"
)

// MaxProbability is the hard ceiling for any trigger probability, base or
// adjusted. A step can never guarantee abandonment.
const MaxProbability = 0.9

// TriggerKind is the cause recorded when a customer abandons.
type TriggerKind string

const (
	TriggerPrice       TriggerKind = "price"
	TriggerUX          TriggerKind = "ux"
	TriggerTrust       TriggerKind = "trust"
	TriggerTechnical   TriggerKind = "technical"
	TriggerDistraction TriggerKind = "distraction"
)

// TriggerKinds lists every kind in canonical display order.
var TriggerKinds = []TriggerKind{
	TriggerPrice,
	TriggerUX,
	TriggerTrust,
	TriggerTechnical,
	TriggerDistraction,
}

// Valid reports whether k is a known trigger kind.
func (k TriggerKind) Valid() bool {
	return slices.Contains(TriggerKinds, k)
}

// IsUXFamily reports whether patience pressure applies to this kind.
// Only ux belongs to the family today.
func (k TriggerKind) IsUXFamily() bool {
	return k == TriggerUX
}

// DefaultSensitiveTraits returns the traits a newly added trigger of kind k
// reacts to.
func DefaultSensitiveTraits(k TriggerKind) []Trait {
	switch k {
	case TriggerPrice:
		return []Trait{TraitBudget}
	case TriggerUX:
		return []Trait{TraitPatience, TraitTechSavviness}
	case TriggerTrust:
		return []Trait{TraitMood}
	case TriggerTechnical:
		return []Trait{TraitTechSavviness}
	case TriggerDistraction:
		return []Trait{TraitDistractionProne}
	default:
		return nil
	}
}

// Trigger is a probabilistic cause of abandonment attached to a step.
type Trigger struct {
	Kind            TriggerKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	BaseProbability float64     `json:"probability" yaml:"probability" mapstructure:"probability"`
	SensitiveTraits []Trait     `json:"sensitive,omitempty" yaml:"sensitive,omitempty" mapstructure:"sensitive"`
}

// NewTrigger builds a trigger with its probability clamped into [0, MaxProbability].
func NewTrigger(kind TriggerKind, probability float64, traits ...Trait) Trigger {
	t := Trigger{Kind: kind, SensitiveTraits: slices.Clone(traits)}
	t.SetProbability(probability)
	return t
}

// SetProbability stores p clamped into [0, MaxProbability].
func (t *Trigger) SetProbability(p float64) {
	t.BaseProbability = ClampProbability(p)
}

// SensitiveTo reports whether the trigger lists trait.
func (t Trigger) SensitiveTo(trait Trait) bool {
	return slices.Contains(t.SensitiveTraits, trait)
}

// Validate checks kind, probability range and trait names.
func (t Trigger) Validate() error {
	if !t.Kind.Valid() {
		return &ConfigError{Field: "trigger.kind", Reason: fmt.Sprintf("unknown kind %q", t.Kind)}
	}
	if !ProbabilityInRange(t.BaseProbability) {
		return &ConfigError{Field: "trigger.probability", Reason: fmt.Sprintf("%s probability %v outside [0, %v]", t.Kind, t.BaseProbability, MaxProbability)}
	}
	for _, tr := range t.SensitiveTraits {
		if !tr.Valid() {
			return &ConfigError{Field: "trigger.sensitive", Reason: fmt.Sprintf("unknown trait %q", tr)}
		}
	}
	return nil
}

// ClampProbability bounds p into [0, MaxProbability]. NaN becomes 0.
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return min(max(p, 0), MaxProbability)
}

// ProbabilityInRange reports whether p is a number in [0, MaxProbability].
func ProbabilityInRange(p float64) bool {
	return p >= 0 && p <= MaxProbability
}
