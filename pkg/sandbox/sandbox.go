// Package sandbox implements "Fix & Retry": editing a private copy of a
// funnel after a run and merging the edited step back.
package sandbox

import (
	"fmt"
	"math"

	"github.com/aretw0/impulse/pkg/domain"
)

// Sandbox holds a structural copy of a funnel plus the abandonment records
// of the run being investigated. Edits only ever touch the copy.
type Sandbox struct {
	working  domain.Funnel
	records  []domain.AbandonmentRecord
	selected string
}

// New copies original and selects the step with the most abandonments.
// Ties go to the earliest step; without records the first step is selected.
func New(original domain.Funnel, records []domain.AbandonmentRecord) *Sandbox {
	sb := &Sandbox{
		working: original.Clone(),
		records: append([]domain.AbandonmentRecord(nil), records...),
	}

	counts := make(map[string]int, len(original.Steps))
	for _, r := range records {
		counts[r.StepID]++
	}
	best := -1
	for _, s := range sb.working.Steps {
		if counts[s.ID] > best {
			best = counts[s.ID]
			sb.selected = s.ID
		}
	}
	return sb
}

// Funnel returns a copy of the edited funnel, ready to simulate.
func (sb *Sandbox) Funnel() domain.Funnel {
	return sb.working.Clone()
}

// Selected returns a copy of the step being edited.
func (sb *Sandbox) Selected() (domain.Step, bool) {
	s, ok := sb.working.Step(sb.selected)
	if !ok {
		return domain.Step{}, false
	}
	return s.Clone(), true
}

// Select switches the step being edited.
func (sb *Sandbox) Select(stepID string) error {
	if sb.working.StepIndex(stepID) < 0 {
		return fmt.Errorf("select step %q: %w", stepID, domain.ErrNotFound)
	}
	sb.selected = stepID
	return nil
}

func (sb *Sandbox) step() (*domain.Step, error) {
	i := sb.working.StepIndex(sb.selected)
	if i < 0 {
		return nil, fmt.Errorf("no step selected: %w", domain.ErrNotFound)
	}
	return &sb.working.Steps[i], nil
}

// SetFriction changes the selected step's friction level.
func (sb *Sandbox) SetFriction(level int) error {
	if level < domain.MinFriction || level > domain.MaxFriction {
		return &domain.ConfigError{Field: "step.friction", Reason: fmt.Sprintf("%d outside [%d, %d]", level, domain.MinFriction, domain.MaxFriction)}
	}
	s, err := sb.step()
	if err != nil {
		return err
	}
	s.FrictionLevel = level
	return nil
}

// SetTriggerProbability edits the selected step's trigger of the given kind.
// A probability <= 0 removes the trigger. Otherwise the probability is
// clamped to domain.MaxProbability; a missing trigger is appended with the
// kind's default sensitivities.
func (sb *Sandbox) SetTriggerProbability(kind domain.TriggerKind, p float64) error {
	if !kind.Valid() {
		return &domain.ConfigError{Field: "trigger.kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	if math.IsNaN(p) {
		return &domain.ConfigError{Field: "trigger.probability", Reason: "probability is not a number"}
	}
	s, err := sb.step()
	if err != nil {
		return err
	}

	for i := range s.Triggers {
		if s.Triggers[i].Kind != kind {
			continue
		}
		if p <= 0 {
			s.Triggers = append(s.Triggers[:i], s.Triggers[i+1:]...)
			return nil
		}
		s.Triggers[i].SetProbability(p)
		return nil
	}
	if p > 0 {
		s.Triggers = append(s.Triggers, domain.NewTrigger(kind, p, domain.DefaultSensitiveTraits(kind)...))
	}
	return nil
}

// ReasonCounts groups the run's abandonments at the selected step by reason.
func (sb *Sandbox) ReasonCounts() map[domain.TriggerKind]int {
	out := make(map[domain.TriggerKind]int)
	for _, r := range sb.records {
		if r.StepID == sb.selected {
			out[r.Reason]++
		}
	}
	return out
}

// ApplyTo returns a copy of original in which only the selected step is
// replaced by its edited version. original itself is not modified.
func (sb *Sandbox) ApplyTo(original domain.Funnel) (domain.Funnel, error) {
	edited, err := sb.step()
	if err != nil {
		return domain.Funnel{}, err
	}
	i := original.StepIndex(sb.selected)
	if i < 0 {
		return domain.Funnel{}, fmt.Errorf("apply step %q: %w", sb.selected, domain.ErrNotFound)
	}
	if err := edited.Validate(); err != nil {
		return domain.Funnel{}, fmt.Errorf("apply step %q: %w", sb.selected, err)
	}
	out := original.Clone()
	out.Steps[i] = edited.Clone()
	return out, nil
}
