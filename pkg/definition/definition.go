// Package definition reads and writes funnel and persona documents.
//
// A document is YAML (or JSON) with a "kind" discriminator:
//
//	kind: funnel
//	name: Simple Product Page
//	steps:
//	  - name: Landing Page
//	    type: landing
//	    friction: 3
//	    triggers:
//	      - kind: ux
//	        probability: 0.1
//	        sensitive: [patience, techSavviness]
//
// Parsing assigns ids to the funnel, its steps or the persona when absent,
// defaults an unset friction to the minimum, and validates the result.
package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/impulse/internal/ids"
	"github.com/aretw0/impulse/pkg/domain"
)

// Kind discriminates document types.
type Kind string

const (
	KindFunnel  Kind = "funnel"
	KindPersona Kind = "persona"
)

// Document is a parsed definition; exactly one of Funnel and Persona is set.
type Document struct {
	Kind    Kind
	Funnel  *domain.Funnel
	Persona *domain.Persona
}

type header struct {
	Kind Kind `json:"kind" yaml:"kind" mapstructure:"kind"`
}

type funnelDoc struct {
	Kind          Kind `json:"kind" yaml:"kind" mapstructure:"kind"`
	domain.Funnel `yaml:",inline" mapstructure:",squash"`
}

type personaDoc struct {
	Kind           Kind `json:"kind" yaml:"kind" mapstructure:"kind"`
	domain.Persona `yaml:",inline" mapstructure:",squash"`
}

// Parse reads a YAML or JSON document of either kind.
func Parse(data []byte) (Document, error) {
	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Document{}, fmt.Errorf("failed to parse definition: %w", err)
	}
	switch h.Kind {
	case KindFunnel:
		f, err := ParseFunnel(data)
		if err != nil {
			return Document{}, err
		}
		return Document{Kind: KindFunnel, Funnel: &f}, nil
	case KindPersona:
		p, err := ParsePersona(data)
		if err != nil {
			return Document{}, err
		}
		return Document{Kind: KindPersona, Persona: &p}, nil
	default:
		return Document{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("unknown document kind %q", h.Kind)}
	}
}

// ParseFunnel reads a funnel document. The kind field is optional here.
func ParseFunnel(data []byte) (domain.Funnel, error) {
	var doc funnelDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Funnel{}, fmt.Errorf("failed to parse funnel: %w", err)
	}
	if doc.Kind != "" && doc.Kind != KindFunnel {
		return domain.Funnel{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("expected %q, got %q", KindFunnel, doc.Kind)}
	}
	return normalizeFunnel(doc.Funnel)
}

// ParsePersona reads a persona document. The kind field is optional here.
func ParsePersona(data []byte) (domain.Persona, error) {
	var doc personaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Persona{}, fmt.Errorf("failed to parse persona: %w", err)
	}
	if doc.Kind != "" && doc.Kind != KindPersona {
		return domain.Persona{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("expected %q, got %q", KindPersona, doc.Kind)}
	}
	return normalizePersona(doc.Persona)
}

// MarshalFunnel renders f as a YAML document.
func MarshalFunnel(f domain.Funnel) ([]byte, error) {
	return yaml.Marshal(funnelDoc{Kind: KindFunnel, Funnel: f})
}

// MarshalPersona renders p as a YAML document.
func MarshalPersona(p domain.Persona) ([]byte, error) {
	return yaml.Marshal(personaDoc{Kind: KindPersona, Persona: p})
}

// LoadFile reads a definition from disk. Files ending in .json are decoded
// as JSON, everything else as YAML.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read definition: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		doc, err := Parse(data)
		if err != nil {
			return Document{}, fmt.Errorf("%s: %w", path, err)
		}
		return doc, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%s: failed to parse definition: %w", path, err)
	}
	doc, err := Decode(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode builds a document from a loosely typed map, as received from JSON
// request bodies or tool arguments. Numbers given as strings are accepted.
func Decode(raw map[string]any) (Document, error) {
	kind, _ := raw["kind"].(string)
	switch Kind(kind) {
	case KindFunnel:
		var doc funnelDoc
		if err := decode(raw, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to decode funnel: %w", err)
		}
		f, err := normalizeFunnel(doc.Funnel)
		if err != nil {
			return Document{}, err
		}
		return Document{Kind: KindFunnel, Funnel: &f}, nil
	case KindPersona:
		var doc personaDoc
		if err := decode(raw, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to decode persona: %w", err)
		}
		p, err := normalizePersona(doc.Persona)
		if err != nil {
			return Document{}, err
		}
		return Document{Kind: KindPersona, Persona: &p}, nil
	default:
		return Document{}, &domain.ConfigError{Field: "kind", Reason: fmt.Sprintf("unknown document kind %q", kind)}
	}
}

func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func normalizeFunnel(f domain.Funnel) (domain.Funnel, error) {
	if f.ID == "" {
		f.ID = ids.New("funnel", f.Name)
	}
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.ID == "" {
			s.ID = ids.New("step", s.Type)
		}
		if s.FrictionLevel == 0 {
			s.FrictionLevel = domain.MinFriction
		}
	}
	if err := f.Validate(); err != nil {
		return domain.Funnel{}, err
	}
	return f, nil
}

func normalizePersona(p domain.Persona) (domain.Persona, error) {
	if p.ID == "" {
		p.ID = ids.New("persona", p.Name)
	}
	if err := p.Validate(); err != nil {
		return domain.Persona{}, err
	}
	return p, nil
}
