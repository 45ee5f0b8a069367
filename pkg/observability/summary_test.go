package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
)

func journeyFunnel() domain.Funnel {
	return domain.Funnel{ID: "f", Steps: []domain.Step{
		{ID: "landing", Name: "Landing"},
		{ID: "product", Name: "Product"},
		{ID: "checkout", Name: "Checkout"},
	}}
}

func records(pairs ...string) []domain.AbandonmentRecord {
	var out []domain.AbandonmentRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.AbandonmentRecord{StepID: pairs[i], Reason: domain.TriggerKind(pairs[i+1])})
	}
	return out
}

func TestSummarize_Journey(t *testing.T) {
	agg := domain.Aggregate{
		Completions: 4,
		Abandonments: records(
			"landing", "ux",
			"product", "price",
			"product", "price",
			"product", "trust",
			"checkout", "technical",
		),
	}

	s := Summarize(journeyFunnel(), agg)
	assert.Equal(t, 9, s.Started)
	assert.Equal(t, 4, s.Completed)
	assert.Equal(t, 5, s.Abandoned)
	assert.Equal(t, 44, s.CompletionRate)
	assert.Equal(t, domain.TriggerPrice, s.TopReason)
	assert.Equal(t, 2, s.ByReason[domain.TriggerPrice])

	require.Len(t, s.Steps, 3)
	assert.Equal(t, 9, s.Steps[0].Entered)
	assert.Equal(t, 1, s.Steps[0].Abandoned)
	assert.Equal(t, 8, s.Steps[1].Entered)
	assert.Equal(t, 3, s.Steps[1].Abandoned)
	assert.Equal(t, map[domain.TriggerKind]int{domain.TriggerPrice: 2, domain.TriggerTrust: 1}, s.Steps[1].Reasons)
	assert.Equal(t, 5, s.Steps[2].Entered)
	assert.Equal(t, "Your prices might be scaring customers away.", s.Insight)
}

func TestSummarize_TopReasonTieGoesToFirstSeen(t *testing.T) {
	s := Summarize(journeyFunnel(), domain.Aggregate{Abandonments: records("landing", "trust", "landing", "ux")})
	assert.Equal(t, domain.TriggerTrust, s.TopReason)
}

func TestInsight(t *testing.T) {
	tests := []struct {
		name string
		s    Summary
		want string
	}{
		{"empty run", Summary{}, "Run a simulation to see insights."},
		{"great", Summary{Started: 10, CompletionRate: 80}, "Great funnel! Your completion rate is impressive."},
		{"middling", Summary{Started: 10, CompletionRate: 60, TopReason: domain.TriggerUX}, "Your funnel needs some optimization to improve conversions."},
		{"poor ux", Summary{Started: 10, CompletionRate: 20, TopReason: domain.TriggerUX}, "Your funnel has a UX issue. Try simplifying the experience."},
		{"poor distraction", Summary{Started: 10, CompletionRate: 49, TopReason: domain.TriggerDistraction}, "Too many distractions in your funnel. Focus on the goal."},
		{"poor without reason", Summary{Started: 10, CompletionRate: 0}, "Your funnel needs some optimization to improve conversions."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Insight(tt.s))
		})
	}
}
