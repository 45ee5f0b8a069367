package observability

import (
	"math"

	"github.com/aretw0/impulse/pkg/domain"
)

// Completion-rate thresholds used by Insight.
const (
	GreatCompletionRate = 80
	PoorCompletionRate  = 50
)

// StepSummary is the drop-off view of one funnel step.
type StepSummary struct {
	StepID    string                     `json:"step_id"`
	Name      string                     `json:"name"`
	Entered   int                        `json:"entered"`
	Abandoned int                        `json:"abandoned"`
	Reasons   map[domain.TriggerKind]int `json:"reasons,omitempty"`
}

// Summary is the analytics view of a finished (or running) simulation.
type Summary struct {
	FunnelID       string                     `json:"funnel_id"`
	Started        int                        `json:"started"`
	Completed      int                        `json:"completed"`
	Abandoned      int                        `json:"abandoned"`
	CompletionRate int                        `json:"completion_rate"`
	ByReason       map[domain.TriggerKind]int `json:"by_reason"`
	TopReason      domain.TriggerKind         `json:"top_reason,omitempty"`
	Steps          []StepSummary              `json:"steps"`
	Insight        string                     `json:"insight"`
}

// Summarize computes completion rate, reason breakdown and the per-step
// customer journey for aggregate against funnel.
//
// Started counts customers that reached a terminal state. Each step's Entered
// is Started minus everyone who abandoned at an earlier step.
func Summarize(funnel domain.Funnel, aggregate domain.Aggregate) Summary {
	s := Summary{
		FunnelID:  funnel.ID,
		Started:   aggregate.Total(),
		Completed: aggregate.Completions,
		Abandoned: len(aggregate.Abandonments),
		ByReason:  make(map[domain.TriggerKind]int),
		Steps:     make([]StepSummary, 0, len(funnel.Steps)),
	}
	if s.Started > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Started) * 100))
	}

	perStep := make(map[string]map[domain.TriggerKind]int)
	topCount := 0
	for _, rec := range aggregate.Abandonments {
		s.ByReason[rec.Reason]++
		// Ties go to the reason seen first.
		if s.ByReason[rec.Reason] > topCount {
			topCount = s.ByReason[rec.Reason]
			s.TopReason = rec.Reason
		}
		if perStep[rec.StepID] == nil {
			perStep[rec.StepID] = make(map[domain.TriggerKind]int)
		}
		perStep[rec.StepID][rec.Reason]++
	}

	remaining := s.Started
	for _, step := range funnel.Steps {
		ss := StepSummary{StepID: step.ID, Name: step.Name, Entered: remaining, Reasons: perStep[step.ID]}
		for _, n := range ss.Reasons {
			ss.Abandoned += n
		}
		remaining -= ss.Abandoned
		s.Steps = append(s.Steps, ss)
	}

	s.Insight = Insight(s)
	return s
}

// Insight returns a one-line recommendation for s.
func Insight(s Summary) string {
	if s.Started == 0 {
		return "Run a simulation to see insights."
	}
	if s.CompletionRate >= GreatCompletionRate {
		return "Great funnel! Your completion rate is impressive."
	}
	if s.CompletionRate < PoorCompletionRate {
		switch s.TopReason {
		case domain.TriggerPrice:
			return "Your prices might be scaring customers away."
		case domain.TriggerUX:
			return "Your funnel has a UX issue. Try simplifying the experience."
		case domain.TriggerTrust:
			return "Your funnel has a trust issue. Add more social proof."
		case domain.TriggerTechnical:
			return "Technical problems are killing your conversions."
		case domain.TriggerDistraction:
			return "Too many distractions in your funnel. Focus on the goal."
		}
	}
	return "Your funnel needs some optimization to improve conversions."
}
