package definition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/presets"
)

const funnelYAML = `
kind: funnel
name: Simple Product Page
steps:
  - name: Landing Page
    type: landing
    friction: 3
    triggers:
      - kind: ux
        probability: 0.1
        sensitive: [patience, techSavviness]
      - kind: distraction
        probability: 0.15
        sensitive: [distractionProne]
  - id: confirm
    name: Confirmation
`

const personaYAML = `
kind: persona
name: Window Browser
emoji: "🤔"
traits:
  patience: 5
  distractionProne: 8
  budget: medium
  techSavviness: medium
  mood: hesitant
`

func TestParse_Funnel(t *testing.T) {
	doc, err := Parse([]byte(funnelYAML))
	require.NoError(t, err)
	require.Equal(t, KindFunnel, doc.Kind)
	require.NotNil(t, doc.Funnel)

	f := *doc.Funnel
	assert.True(t, strings.HasPrefix(f.ID, "funnel-simple-product-page-"))
	require.Len(t, f.Steps, 2)
	assert.True(t, strings.HasPrefix(f.Steps[0].ID, "step-landing-"))
	assert.Equal(t, 3, f.Steps[0].FrictionLevel)
	assert.Equal(t, []domain.Trait{domain.TraitPatience, domain.TraitTechSavviness}, f.Steps[0].Triggers[0].SensitiveTraits)
	assert.Equal(t, 0.15, f.Steps[0].Triggers[1].BaseProbability)

	assert.Equal(t, "confirm", f.Steps[1].ID)
	assert.Equal(t, domain.MinFriction, f.Steps[1].FrictionLevel)
}

func TestParse_Persona(t *testing.T) {
	doc, err := Parse([]byte(personaYAML))
	require.NoError(t, err)
	require.NotNil(t, doc.Persona)
	assert.Equal(t, 8, doc.Persona.Traits.DistractionProne)
	assert.Equal(t, domain.LevelMedium, doc.Persona.Traits.Budget)
	assert.Equal(t, "hesitant", doc.Persona.Traits.Mood)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown kind":        "kind: checkout\nname: x\n",
		"missing kind":        "name: x\n",
		"probability too big": "kind: funnel\nsteps:\n  - id: a\n    triggers:\n      - kind: price\n        probability: 0.95\n",
		"probability nan":     "kind: funnel\nsteps:\n  - id: a\n    triggers:\n      - kind: price\n        probability: .nan\n",
		"no steps":            "kind: funnel\nname: empty\n",
		"duplicate triggers":  "kind: funnel\nsteps:\n  - id: a\n    triggers:\n      - {kind: ux, probability: 0.1}\n      - {kind: ux, probability: 0.2}\n",
		"bad budget":          "kind: persona\nname: p\ntraits: {patience: 3, distractionProne: 3, budget: huge, techSavviness: low}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}

	_, err := ParseFunnel([]byte(personaYAML))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRoundTrip(t *testing.T) {
	f := presets.SimpleProductPage()
	data, err := MarshalFunnel(f)
	require.NoError(t, err)
	back, err := ParseFunnel(data)
	require.NoError(t, err)
	assert.Equal(t, f, back)

	for _, p := range presets.Personas() {
		data, err := MarshalPersona(p)
		require.NoError(t, err)
		back, err := ParsePersona(data)
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
}

func TestRoundTrip_ProbabilityIncrements(t *testing.T) {
	f := domain.Funnel{ID: "f", Name: "grid"}
	for i := 0; i <= 18; i++ {
		p := float64(i) * 0.05
		f.Steps = append(f.Steps, domain.Step{
			ID: string(rune('a' + i)), FrictionLevel: 1,
			Triggers: []domain.Trigger{domain.NewTrigger(domain.TriggerPrice, p)},
		})
	}

	data, err := MarshalFunnel(f)
	require.NoError(t, err)
	back, err := ParseFunnel(data)
	require.NoError(t, err)
	for i := range f.Steps {
		assert.Equal(t, f.Steps[i].Triggers[0].BaseProbability, back.Steps[i].Triggers[0].BaseProbability)
	}
}

func TestDecode_LooselyTyped(t *testing.T) {
	doc, err := Decode(map[string]any{
		"kind": "persona",
		"id":   "p-1",
		"name": "API Persona",
		"traits": map[string]any{
			"patience":         "4",
			"distractionProne": 7.0,
			"budget":           "low",
			"techSavviness":    "high",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, doc.Persona)
	assert.Equal(t, "p-1", doc.Persona.ID)
	assert.Equal(t, 4, doc.Persona.Traits.Patience)
	assert.Equal(t, 7, doc.Persona.Traits.DistractionProne)

	_, err = Decode(map[string]any{"kind": "persona", "name": "x", "shoeSize": 9})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "funnel.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(funnelYAML), 0o644))
	doc, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, KindFunnel, doc.Kind)

	p := presets.Personas()[1]
	raw, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
		domain.Persona
	}{KindPersona, p})
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "persona.json")
	require.NoError(t, os.WriteFile(jsonPath, raw, 0o644))

	doc, err = LoadFile(jsonPath)
	require.NoError(t, err)
	require.NotNil(t, doc.Persona)
	assert.Equal(t, p, *doc.Persona)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
