package definition

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/presets"
)

// Source says where a persona or funnel comes from: a stored id, a built-in
// preset name, or an inline document. The first non-empty field wins, in
// that order.
type Source struct {
	ID       string         `json:"id,omitempty" mapstructure:"id"`
	Preset   string         `json:"preset,omitempty" mapstructure:"preset"`
	Document map[string]any `json:"document,omitempty" mapstructure:"document"`
}

// IsZero reports whether no field is set.
func (s Source) IsZero() bool {
	return s.ID == "" && s.Preset == "" && len(s.Document) == 0
}

// ResolvePersona loads the persona s points at. A nil store rejects id
// sources.
func ResolvePersona(ctx context.Context, store ports.DefinitionStore, s Source) (domain.Persona, error) {
	switch {
	case s.ID != "":
		if store == nil {
			return domain.Persona{}, &domain.ConfigError{Field: "persona.id", Reason: "no definition store configured"}
		}
		return store.GetPersona(ctx, s.ID)
	case s.Preset != "":
		p, ok := presets.Persona(s.Preset)
		if !ok {
			return domain.Persona{}, fmt.Errorf("preset persona %q: %w", s.Preset, domain.ErrNotFound)
		}
		return p, nil
	case len(s.Document) > 0:
		doc, err := Decode(withKind(s.Document, KindPersona))
		if err != nil {
			return domain.Persona{}, err
		}
		if doc.Persona == nil {
			return domain.Persona{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("expected a persona document, got %q", doc.Kind)}
		}
		return *doc.Persona, nil
	default:
		return domain.Persona{}, &domain.ConfigError{Field: "persona", Reason: "a persona id, preset or document is required"}
	}
}

// ResolveFunnel loads the funnel s points at. An empty source resolves to
// the Simple Product Page preset.
func ResolveFunnel(ctx context.Context, store ports.DefinitionStore, s Source) (domain.Funnel, error) {
	switch {
	case s.ID != "":
		if store == nil {
			return domain.Funnel{}, &domain.ConfigError{Field: "funnel.id", Reason: "no definition store configured"}
		}
		return store.GetFunnel(ctx, s.ID)
	case s.Preset != "":
		f, ok := presets.Funnel(s.Preset)
		if !ok {
			return domain.Funnel{}, fmt.Errorf("preset funnel %q: %w", s.Preset, domain.ErrNotFound)
		}
		return f, nil
	case len(s.Document) > 0:
		doc, err := Decode(withKind(s.Document, KindFunnel))
		if err != nil {
			return domain.Funnel{}, err
		}
		if doc.Funnel == nil {
			return domain.Funnel{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("expected a funnel document, got %q", doc.Kind)}
		}
		return *doc.Funnel, nil
	default:
		return presets.SimpleProductPage(), nil
	}
}

// withKind returns a copy of raw with kind filled in when absent.
func withKind(raw map[string]any, kind Kind) map[string]any {
	out := maps.Clone(raw)
	if _, ok := out["kind"]; !ok {
		out["kind"] = string(kind)
	}
	return out
}
