package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
)

// ContentRenderer transforms markdown before it is written, e.g. to ANSI
// for a terminal. This keeps glamour out of the core package.
type ContentRenderer func(string) (string, error)

// Report renders res as a markdown document.
func Report(res Result) string {
	s := res.Summary
	var b strings.Builder

	b.WriteString("# Simulation Report\n\n")
	if res.Stopped {
		b.WriteString("_Stopped before every customer finished._\n\n")
	}
	fmt.Fprintf(&b, "Run `%s` · seed `%d` · %d ticks\n\n", res.RunID, res.Seed, res.Ticks)

	b.WriteString("| Started | Completed | Abandoned | Completion |\n")
	b.WriteString("|--------:|----------:|----------:|-----------:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d%% |\n\n", s.Started, s.Completed, s.Abandoned, s.CompletionRate)

	if len(s.Steps) > 0 {
		b.WriteString("## Journey\n\n")
		b.WriteString("| Step | Entered | Abandoned | Main reason |\n")
		b.WriteString("|------|--------:|----------:|-------------|\n")
		for _, st := range s.Steps {
			name := st.Name
			if name == "" {
				name = st.StepID
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n",
				escapeCell(SanitizeLabel(name)), st.Entered, st.Abandoned, orDash(mainReason(st.Reasons)))
		}
		b.WriteString("\n")
	}

	if s.Abandoned > 0 {
		b.WriteString("## Abandonment reasons\n\n")
		for _, kind := range domain.TriggerKinds {
			if n := s.ByReason[kind]; n > 0 {
				fmt.Fprintf(&b, "- **%s**: %d\n", kind, n)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "> %s\n", s.Insight)
	return b.String()
}

// mainReason picks the most frequent reason, ties going to declaration
// order of domain.TriggerKinds.
func mainReason(reasons map[domain.TriggerKind]int) string {
	best, bestN := domain.TriggerKind(""), 0
	for _, kind := range domain.TriggerKinds {
		if n := reasons[kind]; n > bestN {
			best, bestN = kind, n
		}
	}
	return string(best)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// summaryLine is the one-line outcome used by the text handler.
func summaryLine(s observability.Summary) string {
	return fmt.Sprintf("%d/%d completed (%d%%), %d abandoned", s.Completed, s.Started, s.CompletionRate, s.Abandoned)
}
