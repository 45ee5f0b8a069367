package dsl

import (
	"strings"
	"testing"

	"github.com/aretw0/impulse/pkg/domain"
)

func TestBuilder_Funnel(t *testing.T) {
	f, err := Funnel("Checkout").
		Step("Landing Page").Type("landing").Friction(3).
		Trigger(domain.TriggerUX, 0.1, domain.TraitPatience).
		Trigger(domain.TriggerDistraction, 0.15).
		Step("Payment").ID("pay").Type("checkout").Friction(5).
		Trigger(domain.TriggerPrice, 1.5).
		Step("Confirmation").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if !strings.HasPrefix(f.ID, "funnel-checkout-") {
		t.Errorf("Expected generated funnel id, got %q", f.ID)
	}
	if len(f.Steps) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(f.Steps))
	}

	landing := f.Steps[0]
	if !strings.HasPrefix(landing.ID, "step-landing-") {
		t.Errorf("Expected generated step id, got %q", landing.ID)
	}
	if len(landing.Triggers) != 2 || landing.Triggers[0].Kind != domain.TriggerUX {
		t.Fatalf("Expected ux then distraction triggers, got %+v", landing.Triggers)
	}
	if got := landing.Triggers[1].SensitiveTraits; len(got) != 1 || got[0] != domain.TraitDistractionProne {
		t.Errorf("Expected default distraction sensitivity, got %v", got)
	}

	if f.Steps[1].ID != "pay" {
		t.Errorf("Expected pinned id 'pay', got %q", f.Steps[1].ID)
	}
	if p := f.Steps[1].Triggers[0].BaseProbability; p != domain.MaxProbability {
		t.Errorf("Expected probability clamped to %v, got %v", domain.MaxProbability, p)
	}

	confirm := f.Steps[2]
	if confirm.FrictionLevel != domain.MinFriction {
		t.Errorf("Expected default friction %d, got %d", domain.MinFriction, confirm.FrictionLevel)
	}
	if len(confirm.Triggers) != 0 {
		t.Errorf("Expected no triggers on confirmation, got %d", len(confirm.Triggers))
	}
}

func TestBuilder_FunnelValidation(t *testing.T) {
	if _, err := Funnel("Empty").Build(); err == nil {
		t.Error("Expected error for funnel without steps")
	}

	_, err := Funnel("Dup").
		Step("A").Trigger(domain.TriggerUX, 0.1).Trigger(domain.TriggerUX, 0.2).
		Build()
	if err == nil {
		t.Error("Expected error for duplicate trigger kinds")
	}

	if _, err := Funnel("Friction").Step("A").Friction(12).Build(); err == nil {
		t.Error("Expected error for friction above maximum")
	}
}

func TestBuilder_Persona(t *testing.T) {
	p, err := Persona("Impatient Buyer").
		Emoji("⏱️").
		Patience(2).DistractionProne(6).
		Budget(domain.LevelHigh).TechSavviness(domain.LevelLow).
		Describe("impatient", "immediate purchase", "high").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if !strings.HasPrefix(p.ID, "persona-impatient-buyer-") {
		t.Errorf("Expected generated persona id, got %q", p.ID)
	}
	if p.Traits.Patience != 2 || p.Traits.TechSavviness != domain.LevelLow {
		t.Errorf("Unexpected traits %+v", p.Traits)
	}

	if _, err := Persona("Broken").Patience(0).Build(); err == nil {
		t.Error("Expected error for patience below minimum")
	}
}
