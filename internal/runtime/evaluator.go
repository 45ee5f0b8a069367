package runtime

import (
	"fmt"

	"github.com/aretw0/impulse/pkg/domain"
)

// Trait adjustment constants of the abandonment model.
const (
	// PatienceThreshold is the patience score below which UX pressure rises.
	PatienceThreshold = 5
	// PatienceStep is added per patience point below the threshold.
	PatienceStep = 0.05
	// LowBudgetPenalty is added to price triggers for low-budget customers.
	LowBudgetPenalty = 0.2
	// LowTechPenalty is added to technical triggers for low-savviness customers.
	LowTechPenalty = 0.15
	// DistractionThreshold is the distraction score above which pressure rises.
	DistractionThreshold = 5
	// DistractionStep is added per distraction point above the threshold.
	DistractionStep = 0.05
)

// Decision is the outcome of evaluating one step for one customer.
type Decision struct {
	Abandoned bool
	Reason    domain.TriggerKind
}

// Adjustment returns the additive probability change that one sensitive
// trait contributes to a trigger of the given kind. Unlisted trait and kind
// combinations contribute nothing.
func Adjustment(trait domain.Trait, kind domain.TriggerKind, traits domain.Traits) float64 {
	switch trait {
	case domain.TraitPatience:
		if kind.IsUXFamily() && traits.Patience < PatienceThreshold {
			return float64(PatienceThreshold-traits.Patience) * PatienceStep
		}
	case domain.TraitBudget:
		if kind == domain.TriggerPrice && traits.Budget == domain.LevelLow {
			return LowBudgetPenalty
		}
	case domain.TraitTechSavviness:
		if kind == domain.TriggerTechnical && traits.TechSavviness == domain.LevelLow {
			return LowTechPenalty
		}
	case domain.TraitDistractionProne:
		if kind == domain.TriggerDistraction && traits.DistractionProne > DistractionThreshold {
			return float64(traits.DistractionProne-DistractionThreshold) * DistractionStep
		}
	}
	return 0
}

// EffectiveProbability is the trigger's base probability plus every trait
// adjustment, capped at domain.MaxProbability.
func EffectiveProbability(t domain.Trigger, traits domain.Traits) float64 {
	p := t.BaseProbability
	for _, trait := range t.SensitiveTraits {
		p += Adjustment(trait, t.Kind, traits)
	}
	return min(p, domain.MaxProbability)
}

// Evaluate decides whether a customer with the given traits abandons at step
// during this tick.
//
// Triggers are evaluated in declaration order and each consumes exactly one
// draw from rng. The first trigger whose draw falls below its effective
// probability wins; later triggers are not evaluated. A step without
// triggers never causes abandonment and consumes no draws.
//
// A base probability outside [0, domain.MaxProbability] is an invariant
// violation: validated funnels can never produce one.
func Evaluate(step domain.Step, traits domain.Traits, rng RandomSource) (Decision, error) {
	if len(step.Triggers) == 0 {
		return Decision{}, nil
	}
	if rng == nil {
		return Decision{}, &domain.InvariantViolation{Op: "evaluate", Detail: "nil random source"}
	}

	for _, t := range step.Triggers {
		if !domain.ProbabilityInRange(t.BaseProbability) {
			return Decision{}, &domain.InvariantViolation{
				Op:     "evaluate",
				Detail: fmt.Sprintf("step %q trigger %q base probability %v outside [0, %v]", step.ID, t.Kind, t.BaseProbability, domain.MaxProbability),
			}
		}
		if rng.Float64() < EffectiveProbability(t, traits) {
			return Decision{Abandoned: true, Reason: t.Kind}, nil
		}
	}
	return Decision{}, nil
}
