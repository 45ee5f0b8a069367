// Package presets ships the built-in personas and the sample funnel.
//
// Every call returns fresh values with newly generated IDs, so presets can be
// saved to a store more than once without colliding.
package presets

import (
	"strings"

	"github.com/aretw0/impulse/internal/ids"
	"github.com/aretw0/impulse/pkg/domain"
)

// Personas returns the four default personas.
func Personas() []domain.Persona {
	templates := []domain.Persona{
		{
			Name:  "Eager Shopper",
			Emoji: "😍",
			Traits: domain.Traits{
				Patience: 7, DistractionProne: 3,
				Budget: domain.LevelHigh, TechSavviness: domain.LevelMedium,
				Mood: "excited", Intent: "immediate purchase", Urgency: "high",
			},
		},
		{
			Name:  "Budget Hunter",
			Emoji: "🔍",
			Traits: domain.Traits{
				Patience: 8, DistractionProne: 4,
				Budget: domain.LevelLow, TechSavviness: domain.LevelHigh,
				Mood: "curious", Intent: "research", Urgency: "medium",
			},
		},
		{
			Name:  "Window Browser",
			Emoji: "🤔",
			Traits: domain.Traits{
				Patience: 5, DistractionProne: 8,
				Budget: domain.LevelMedium, TechSavviness: domain.LevelMedium,
				Mood: "hesitant", Intent: "browsing", Urgency: "low",
			},
		},
		{
			Name:  "Impatient Buyer",
			Emoji: "⏱️",
			Traits: domain.Traits{
				Patience: 2, DistractionProne: 6,
				Budget: domain.LevelHigh, TechSavviness: domain.LevelLow,
				Mood: "impatient", Intent: "immediate purchase", Urgency: "high",
			},
		},
	}
	for i := range templates {
		templates[i].ID = ids.New("persona", templates[i].Name)
	}
	return templates
}

// Persona finds a default persona by name or slug, case-insensitively.
func Persona(name string) (domain.Persona, bool) {
	want := ids.Slug(name)
	for _, p := range Personas() {
		if strings.EqualFold(p.Name, name) || ids.Slug(p.Name) == want {
			return p, true
		}
	}
	return domain.Persona{}, false
}

// SimpleProductPage returns the sample five-step product funnel.
func SimpleProductPage() domain.Funnel {
	step := func(name, typ string, friction int, triggers ...domain.Trigger) domain.Step {
		return domain.Step{
			ID:            ids.New("step", typ),
			Name:          name,
			Type:          typ,
			FrictionLevel: friction,
			Triggers:      triggers,
		}
	}
	return domain.Funnel{
		ID:   ids.New("funnel", "Simple Product Page"),
		Name: "Simple Product Page",
		Steps: []domain.Step{
			step("Landing Page", "landing", 3,
				domain.NewTrigger(domain.TriggerUX, 0.1, domain.TraitPatience, domain.TraitTechSavviness),
				domain.NewTrigger(domain.TriggerDistraction, 0.15, domain.TraitDistractionProne),
			),
			step("Product Details", "product", 2,
				domain.NewTrigger(domain.TriggerPrice, 0.25, domain.TraitBudget),
				domain.NewTrigger(domain.TriggerTrust, 0.1, domain.TraitMood),
			),
			step("Add to Cart", "cart", 1,
				domain.NewTrigger(domain.TriggerTechnical, 0.05, domain.TraitTechSavviness),
			),
			step("Checkout", "checkout", 5,
				domain.NewTrigger(domain.TriggerUX, 0.2, domain.TraitPatience),
				domain.NewTrigger(domain.TriggerPrice, 0.3, domain.TraitBudget),
				domain.NewTrigger(domain.TriggerTechnical, 0.1, domain.TraitTechSavviness),
			),
			step("Confirmation", "confirmation", 1),
		},
	}
}

// Funnels returns every built-in funnel.
func Funnels() []domain.Funnel {
	return []domain.Funnel{SimpleProductPage()}
}

// Funnel finds a built-in funnel by name or slug, case-insensitively.
func Funnel(name string) (domain.Funnel, bool) {
	want := ids.Slug(name)
	for _, f := range Funnels() {
		if strings.EqualFold(f.Name, name) || ids.Slug(f.Name) == want {
			return f, true
		}
	}
	return domain.Funnel{}, false
}
