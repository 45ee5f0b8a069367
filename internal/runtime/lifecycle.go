package runtime

import (
	"fmt"
	"time"

	"github.com/aretw0/impulse/pkg/domain"
)

const (
	// TickUnit is the dwell time one tick adds at speed 1. The reference
	// cadence ticks every 100ms, so a dwell unit takes about one second.
	TickUnit = 0.1
	// DwellUnit is the elapsed time after which a step decision is taken.
	DwellUnit = 1.0
	// dwellTolerance absorbs float drift from repeated TickUnit additions
	// (ten additions of 0.1 sum to 0.9999999999999999).
	dwellTolerance = 1e-9
)

// Advance moves one customer forward by one tick.
//
// Terminal customers are returned unchanged with TransitionNone. Active
// customers accumulate speed*TickUnit of dwell time; once a full dwell unit
// has elapsed the current step is evaluated and the customer abandons,
// completes or moves to the next step. Advance never mutates c.
func Advance(c domain.Customer, funnel domain.Funnel, speed float64, rng RandomSource, now time.Time) (domain.Transition, error) {
	if c.Status.Terminal() {
		return domain.Transition{Kind: domain.TransitionNone, Before: c, After: c}, nil
	}
	if c.Status != domain.StatusActive {
		return domain.Transition{}, &domain.InvariantViolation{Op: "advance", Detail: fmt.Sprintf("customer %q has unknown status %q", c.ID, c.Status)}
	}
	if len(funnel.Steps) == 0 {
		return domain.Transition{}, &domain.InvariantViolation{Op: "advance", Detail: "funnel has no steps"}
	}
	if c.StepIndex < 0 || c.StepIndex >= len(funnel.Steps) {
		return domain.Transition{}, &domain.InvariantViolation{
			Op:     "advance",
			Detail: fmt.Sprintf("customer %q step index %d out of range [0, %d)", c.ID, c.StepIndex, len(funnel.Steps)),
		}
	}
	if !domain.ValidSpeed(speed) {
		return domain.Transition{}, &domain.InvariantViolation{Op: "advance", Detail: fmt.Sprintf("invalid speed %v", speed)}
	}

	next := c
	next.Elapsed += speed * TickUnit
	if next.Elapsed < DwellUnit-dwellTolerance {
		return domain.Transition{Kind: domain.TransitionDwell, Before: c, After: next}, nil
	}

	step := funnel.Steps[c.StepIndex]
	decision, err := Evaluate(step, c.Traits, rng)
	if err != nil {
		return domain.Transition{}, err
	}
	next.Elapsed = 0

	switch {
	case decision.Abandoned:
		next.Status = domain.StatusAbandoned
		next.Reason = decision.Reason
		return domain.Transition{
			Kind:   domain.TransitionAbandon,
			Before: c,
			After:  next,
			Record: &domain.AbandonmentRecord{
				StepID:    step.ID,
				Reason:    decision.Reason,
				PersonaID: c.PersonaID,
				Timestamp: now,
			},
		}, nil
	case c.StepIndex == len(funnel.Steps)-1:
		next.Status = domain.StatusCompleted
		return domain.Transition{Kind: domain.TransitionComplete, Before: c, After: next}, nil
	default:
		next.StepIndex++
		return domain.Transition{Kind: domain.TransitionAdvance, Before: c, After: next}, nil
	}
}
