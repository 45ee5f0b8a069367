package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
)

func abandonAt(id, step string, reason domain.TriggerKind) domain.Transition {
	before := domain.Customer{ID: id, PersonaID: "p", Status: domain.StatusActive}
	after := before
	after.Status = domain.StatusAbandoned
	after.Reason = reason
	return domain.Transition{
		Kind:   domain.TransitionAbandon,
		Before: before,
		After:  after,
		Record: &domain.AbandonmentRecord{StepID: step, Reason: reason, PersonaID: "p", Timestamp: time.Unix(0, 0)},
	}
}

func complete(id string) domain.Transition {
	before := domain.Customer{ID: id, Status: domain.StatusActive}
	after := before
	after.Status = domain.StatusCompleted
	return domain.Transition{Kind: domain.TransitionComplete, Before: before, After: after}
}

func TestAggregator_Apply(t *testing.T) {
	a := NewAggregator()

	err := a.Apply([]domain.Transition{
		complete("a"),
		abandonAt("b", "s1", domain.TriggerPrice),
		{Kind: domain.TransitionDwell},
		{Kind: domain.TransitionNone},
		complete("c"),
	})
	require.NoError(t, err)

	snap := a.Snapshot()
	assert.Equal(t, 2, snap.Completions)
	require.Len(t, snap.Abandonments, 1)
	assert.Equal(t, "s1", snap.Abandonments[0].StepID)
	assert.Equal(t, 3, snap.Total())
}

func TestAggregator_RejectsDuplicateTerminalTransition(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Apply([]domain.Transition{complete("a")}))

	dup := complete("b")
	dup.Before.Status = domain.StatusCompleted

	err := a.Apply([]domain.Transition{complete("c"), dup})
	require.ErrorIs(t, err, domain.ErrInvariantViolation)

	// Nothing from the rejected batch is recorded.
	assert.Equal(t, 1, a.Snapshot().Completions)
}

func TestAggregator_RejectsAbandonWithoutRecord(t *testing.T) {
	a := NewAggregator()
	tr := abandonAt("a", "s1", domain.TriggerUX)
	tr.Record = nil
	assert.ErrorIs(t, a.Apply([]domain.Transition{tr}), domain.ErrInvariantViolation)
}

func TestAggregator_SnapshotIsACopy(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Apply([]domain.Transition{abandonAt("a", "s1", domain.TriggerUX)}))

	snap := a.Snapshot()
	snap.Abandonments[0].StepID = "mutated"
	snap.Completions = 99

	fresh := a.Snapshot()
	assert.Equal(t, "s1", fresh.Abandonments[0].StepID)
	assert.Zero(t, fresh.Completions)
}

func TestAggregator_Reset(t *testing.T) {
	a := NewAggregator()
	require.NoError(t, a.Apply([]domain.Transition{complete("a"), abandonAt("b", "s", domain.TriggerTrust)}))
	a.Reset()
	assert.Zero(t, a.Snapshot().Total())
}

func TestAggregator_ReadersNeverSeePartialTick(t *testing.T) {
	a := NewAggregator()
	const ticks = 200
	batch := []domain.Transition{complete("a"), abandonAt("b", "s", domain.TriggerPrice)}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range ticks {
			_ = a.Apply(batch)
		}
	}()

	for range ticks {
		snap := a.Snapshot()
		assert.Equal(t, snap.Completions, len(snap.Abandonments))
	}
	wg.Wait()
	assert.Equal(t, ticks*2, a.Snapshot().Total())
}
