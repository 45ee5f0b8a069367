package sandbox

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
)

func funnel() domain.Funnel {
	return domain.Funnel{ID: "f", Steps: []domain.Step{
		{ID: "landing", FrictionLevel: 3, Triggers: []domain.Trigger{domain.NewTrigger(domain.TriggerUX, 0.1, domain.TraitPatience)}},
		{ID: "product", FrictionLevel: 2, Triggers: []domain.Trigger{
			domain.NewTrigger(domain.TriggerPrice, 0.25, domain.TraitBudget),
			domain.NewTrigger(domain.TriggerTrust, 0.1, domain.TraitMood),
		}},
		{ID: "checkout", FrictionLevel: 5},
	}}
}

func rec(step string, reason domain.TriggerKind) domain.AbandonmentRecord {
	return domain.AbandonmentRecord{StepID: step, Reason: reason}
}

func TestNew_SelectsMostAbandonedStep(t *testing.T) {
	sb := New(funnel(), []domain.AbandonmentRecord{
		rec("landing", domain.TriggerUX),
		rec("product", domain.TriggerPrice),
		rec("product", domain.TriggerPrice),
		rec("product", domain.TriggerTrust),
	})
	s, ok := sb.Selected()
	require.True(t, ok)
	assert.Equal(t, "product", s.ID)
	assert.Equal(t, map[domain.TriggerKind]int{domain.TriggerPrice: 2, domain.TriggerTrust: 1}, sb.ReasonCounts())
}

func TestNew_TieGoesToEarliestStep(t *testing.T) {
	sb := New(funnel(), []domain.AbandonmentRecord{
		rec("checkout", domain.TriggerUX),
		rec("product", domain.TriggerPrice),
	})
	s, _ := sb.Selected()
	assert.Equal(t, "product", s.ID)
}

func TestNew_NoRecordsSelectsFirstStep(t *testing.T) {
	s, _ := New(funnel(), nil).Selected()
	assert.Equal(t, "landing", s.ID)
}

func TestSetTriggerProbability(t *testing.T) {
	sb := New(funnel(), nil)
	require.NoError(t, sb.Select("product"))

	require.NoError(t, sb.SetTriggerProbability(domain.TriggerPrice, 2))
	require.NoError(t, sb.SetTriggerProbability(domain.TriggerTrust, 0))
	require.NoError(t, sb.SetTriggerProbability(domain.TriggerDistraction, 0.3))
	require.NoError(t, sb.SetTriggerProbability(domain.TriggerTechnical, -1))

	s, _ := sb.Selected()
	require.Len(t, s.Triggers, 2)
	assert.Equal(t, domain.TriggerPrice, s.Triggers[0].Kind)
	assert.Equal(t, domain.MaxProbability, s.Triggers[0].BaseProbability)
	assert.Equal(t, domain.TriggerDistraction, s.Triggers[1].Kind)
	assert.Equal(t, []domain.Trait{domain.TraitDistractionProne}, s.Triggers[1].SensitiveTraits)

	assert.ErrorIs(t, sb.SetTriggerProbability("weather", 0.2), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, sb.SetTriggerProbability(domain.TriggerPrice, math.NaN()), domain.ErrInvalidConfiguration)
	s, _ = sb.Selected()
	assert.Equal(t, domain.MaxProbability, s.Triggers[0].BaseProbability)
}

func TestEditsNeverTouchOriginal(t *testing.T) {
	orig := funnel()
	sb := New(orig, nil)
	require.NoError(t, sb.SetFriction(9))
	require.NoError(t, sb.SetTriggerProbability(domain.TriggerUX, 0.5))

	assert.Equal(t, 3, orig.Steps[0].FrictionLevel)
	assert.Equal(t, 0.1, orig.Steps[0].Triggers[0].BaseProbability)
	assert.Equal(t, 9, sb.Funnel().Steps[0].FrictionLevel)

	assert.ErrorIs(t, sb.SetFriction(0), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, sb.Select("missing"), domain.ErrNotFound)
}

func TestApplyTo_MergesOnlySelectedStep(t *testing.T) {
	orig := funnel()
	sb := New(orig, []domain.AbandonmentRecord{rec("product", domain.TriggerPrice)})
	require.NoError(t, sb.SetTriggerProbability(domain.TriggerPrice, 0.05))

	// Edit a different step, then switch back; only product is merged.
	require.NoError(t, sb.Select("checkout"))
	require.NoError(t, sb.SetFriction(1))
	require.NoError(t, sb.Select("product"))

	// The original was renamed meanwhile; the rename survives the merge.
	orig.Name = "Renamed"
	merged, err := sb.ApplyTo(orig)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", merged.Name)
	assert.Equal(t, 0.05, merged.Steps[1].Triggers[0].BaseProbability)
	assert.Equal(t, 5, merged.Steps[2].FrictionLevel)
	assert.Equal(t, 0.25, orig.Steps[1].Triggers[0].BaseProbability)

	_, err = sb.ApplyTo(domain.Funnel{ID: "other", Steps: []domain.Step{{ID: "x", FrictionLevel: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
