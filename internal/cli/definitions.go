package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/internal/presentation/graph"
	"github.com/aretw0/impulse/pkg/definition"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/presets"
	"github.com/aretw0/impulse/pkg/runner"
)

// ValidateFiles parses every path and reports each result on w. It returns
// an error when at least one file is invalid.
func ValidateFiles(paths []string, w io.Writer) error {
	failed := 0
	for _, path := range paths {
		doc, err := definition.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "✗ %v\n", err)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %s\n", path, describe(doc))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definitions invalid", failed, len(paths))
	}
	return nil
}

func describe(doc definition.Document) string {
	switch {
	case doc.Funnel != nil:
		triggers := 0
		for _, s := range doc.Funnel.Steps {
			triggers += len(s.Triggers)
		}
		return fmt.Sprintf("funnel %q, %d steps, %d triggers", doc.Funnel.Name, len(doc.Funnel.Steps), triggers)
	case doc.Persona != nil:
		return fmt.Sprintf("persona %q", doc.Persona.Name)
	default:
		return string(doc.Kind)
	}
}

// ImportFiles saves every definition in paths to store.
func ImportFiles(ctx context.Context, store ports.DefinitionStore, paths []string, w io.Writer) error {
	for _, path := range paths {
		doc, err := definition.LoadFile(path)
		if err != nil {
			return err
		}
		switch {
		case doc.Funnel != nil:
			err = store.SaveFunnel(ctx, *doc.Funnel)
			if err == nil {
				fmt.Fprintf(w, "saved funnel %s\n", doc.Funnel.ID)
			}
		case doc.Persona != nil:
			err = store.SavePersona(ctx, *doc.Persona)
			if err == nil {
				fmt.Fprintf(w, "saved persona %s\n", doc.Persona.ID)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// ListDefinitions prints the stored funnels and personas as a table.
func ListDefinitions(ctx context.Context, store ports.DefinitionStore, w io.Writer) error {
	funnels, err := store.ListFunnels(ctx)
	if err != nil {
		return err
	}
	personas, err := store.ListPersonas(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tNAME")
	for _, f := range funnels {
		fmt.Fprintf(tw, "funnel\t%s\t%s\n", f.ID, f.Name)
	}
	for _, p := range personas {
		fmt.Fprintf(tw, "persona\t%s\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}

// DeleteDefinition removes the funnel or persona with id.
func DeleteDefinition(ctx context.Context, store ports.DefinitionStore, kind definition.Kind, id string) error {
	switch kind {
	case definition.KindFunnel:
		return store.DeleteFunnel(ctx, id)
	case definition.KindPersona:
		return store.DeletePersona(ctx, id)
	default:
		return &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
}

// PrintPresets lists the built-in personas and funnels.
func PrintPresets(w io.Writer, asJSON bool) error {
	personas, funnels := presets.Personas(), presets.Funnels()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"personas": personas, "funnels": funnels})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSONA\tPATIENCE\tDISTRACTION\tBUDGET\tTECH")
	for _, p := range personas {
		t := p.Traits
		fmt.Fprintf(tw, "%s %s\t%d\t%d\t%s\t%s\n", p.Emoji, p.Name, t.Patience, t.DistractionProne, t.Budget, t.TechSavviness)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FUNNEL\tSTEPS")
	for _, f := range funnels {
		fmt.Fprintf(tw, "%s\t%d\n", f.Name, len(f.Steps))
	}
	return tw.Flush()
}

// GraphOptions configures PrintGraph.
type GraphOptions struct {
	Funnel DefinitionRef
	// Persona, when set, runs a fast simulation and overlays its drop-off.
	Persona   DefinitionRef
	Customers int
	Seed      *uint64
}

// PrintGraph writes the funnel as a Mermaid flowchart.
func PrintGraph(ctx context.Context, store ports.DefinitionStore, opts GraphOptions, w io.Writer) error {
	funnel, err := resolveFunnel(ctx, store, opts.Funnel)
	if err != nil {
		return fmt.Errorf("funnel: %w", err)
	}

	var overlay *graph.Overlay
	if opts.Persona != (DefinitionRef{}) {
		persona, err := resolvePersona(ctx, store, opts.Persona)
		if err != nil {
			return fmt.Errorf("persona: %w", err)
		}
		customers := opts.Customers
		if customers == 0 {
			customers = 20
		}
		var simOpts []impulse.Option
		if opts.Seed != nil {
			simOpts = append(simOpts, impulse.WithSeed(*opts.Seed))
		}
		res, err := runner.Simulate(ctx, runner.StartRequest{Persona: persona, Funnel: funnel, Customers: customers, Speed: 1}, nil, simOpts...)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{Steps: res.Summary.Steps}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(funnel, overlay))
	return err
}
