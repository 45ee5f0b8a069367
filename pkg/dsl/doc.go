/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing funnels and personas.

It lets developers define funnels with a type-safe, fluent builder instead of
YAML documents. This is particularly useful for tests, generated scenarios and
leveraging IDE autocompletion/type-checking.

Example usage:

	funnel, err := dsl.Funnel("Checkout").
		Step("Landing Page").Type("landing").Friction(3).
		Trigger(domain.TriggerUX, 0.1, domain.TraitPatience).
		Step("Payment").Type("checkout").Friction(5).
		Trigger(domain.TriggerPrice, 0.3).
		Step("Confirmation").
		Build()

	persona, err := dsl.Persona("Bargain Hunter").
		Patience(8).DistractionProne(4).
		Budget(domain.LevelLow).TechSavviness(domain.LevelHigh).
		Build()

A trigger added without explicit traits reacts to
domain.DefaultSensitiveTraits for its kind. Missing IDs are generated and a
step without Friction gets the minimum level.
*/
package dsl
