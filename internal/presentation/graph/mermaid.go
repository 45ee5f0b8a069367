package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
)

// Overlay carries run results to paint onto the funnel graph.
type Overlay struct {
	Steps []observability.StepSummary
	// Selected highlights one step, e.g. the step open in the sandbox.
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart of the funnel steps.
// Shapes:
// - First step: ([Stadium])
// - Last step: ((Circle))
// - Default: [Rectangle]
// With an overlay, edges carry customer counts, abandonments flow into a
// shared drop-off node, and the step losing the most customers is marked.
func GenerateMermaid(funnel domain.Funnel, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	stats := make(map[string]observability.StepSummary)
	if overlay != nil {
		for _, s := range overlay.Steps {
			stats[s.StepID] = s
		}
	}

	last := len(funnel.Steps) - 1
	for i, step := range funnel.Steps {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		switch i {
		case 0:
			opener, closer = "([", "])"
		case last:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, stepLabel(step), closer)

		if i < last {
			next := sanitizeMermaidID(funnel.Steps[i+1].ID)
			if s, ok := stats[step.ID]; ok {
				fmt.Fprintf(&sb, "    %s -- \"%d continue\" --> %s\n", safeID, s.Entered-s.Abandoned, next)
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", safeID, next)
			}
		}
		if s, ok := stats[step.ID]; ok && s.Abandoned > 0 {
			fmt.Fprintf(&sb, "    %s -. \"%d left\" .-> dropoff\n", safeID, s.Abandoned)
		}
	}

	if overlay != nil {
		sb.WriteString("    dropoff{{\"Abandoned\"}}\n")

		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef hot fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if hot := hottest(overlay.Steps); hot != "" {
			fmt.Fprintf(&sb, "    class %s hot;\n", sanitizeMermaidID(hot))
		}
		if overlay.Selected != "" {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func stepLabel(step domain.Step) string {
	name := step.Name
	if name == "" {
		name = step.ID
	}
	label := strings.ReplaceAll(name, "\"", "'")
	for _, t := range step.Triggers {
		label += fmt.Sprintf(" <br/> %s %.0f%%", t.Kind, t.BaseProbability*100)
	}
	return label
}

// hottest returns the step with the most abandonments; ties keep the
// earliest step.
func hottest(steps []observability.StepSummary) string {
	id, most := "", 0
	for _, s := range steps {
		if s.Abandoned > most {
			id, most = s.StepID, s.Abandoned
		}
	}
	return id
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
