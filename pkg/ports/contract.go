package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
)

func contractFunnel(id string) domain.Funnel {
	return domain.Funnel{
		ID:   id,
		Name: "Contract " + id,
		Steps: []domain.Step{
			{ID: id + "-landing", Name: "Landing", Type: "landing", FrictionLevel: 3, Triggers: []domain.Trigger{
				domain.NewTrigger(domain.TriggerUX, 0.1, domain.TraitPatience, domain.TraitTechSavviness),
				domain.NewTrigger(domain.TriggerDistraction, 0.15, domain.TraitDistractionProne),
			}},
			{ID: id + "-confirm", Name: "Confirmation", Type: "confirmation", FrictionLevel: 1},
		},
	}
}

func contractPersona(id string) domain.Persona {
	return domain.Persona{
		ID:    id,
		Name:  "Contract " + id,
		Emoji: "🔍",
		Traits: domain.Traits{
			Patience: 8, DistractionProne: 4,
			Budget: domain.LevelLow, TechSavviness: domain.LevelHigh,
			Mood: "curious",
		},
	}
}

// RunDefinitionStoreContract runs a suite of tests to verify that a
// DefinitionStore implementation adheres to the defined interface contract.
// The store must start empty.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()

	t.Run("Save and Get Funnel", func(t *testing.T) {
		f := contractFunnel("funnel-b")
		require.NoError(t, store.SaveFunnel(ctx, f))

		loaded, err := store.GetFunnel(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, f, loaded)
	})

	t.Run("Overwrite Funnel", func(t *testing.T) {
		f := contractFunnel("funnel-b")
		f.Steps[0].Triggers[0].SetProbability(0.35)
		require.NoError(t, store.SaveFunnel(ctx, f))

		loaded, err := store.GetFunnel(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.35, loaded.Steps[0].Triggers[0].BaseProbability)
	})

	t.Run("Returned Funnel Is A Copy", func(t *testing.T) {
		loaded, err := store.GetFunnel(ctx, "funnel-b")
		require.NoError(t, err)
		loaded.Steps[0].Triggers[0].SensitiveTraits[0] = domain.TraitMood
		loaded.Steps[0].FrictionLevel = 10

		again, err := store.GetFunnel(ctx, "funnel-b")
		require.NoError(t, err)
		assert.Equal(t, domain.TraitPatience, again.Steps[0].Triggers[0].SensitiveTraits[0])
		assert.Equal(t, 3, again.Steps[0].FrictionLevel)
	})

	t.Run("List Funnels In Id Order", func(t *testing.T) {
		require.NoError(t, store.SaveFunnel(ctx, contractFunnel("funnel-a")))

		list, err := store.ListFunnels(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "funnel-a", list[0].ID)
		assert.Equal(t, "funnel-b", list[1].ID)
	})

	t.Run("Reject Invalid Funnel", func(t *testing.T) {
		bad := contractFunnel("funnel-bad")
		bad.Steps = nil
		assert.ErrorIs(t, store.SaveFunnel(ctx, bad), domain.ErrInvalidConfiguration)

		_, err := store.GetFunnel(ctx, "funnel-bad")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete Funnel", func(t *testing.T) {
		require.NoError(t, store.DeleteFunnel(ctx, "funnel-a"))

		_, err := store.GetFunnel(ctx, "funnel-a")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, store.DeleteFunnel(ctx, "funnel-a"), domain.ErrNotFound)

		list, err := store.ListFunnels(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Get Funnel Non-Existent", func(t *testing.T) {
		_, err := store.GetFunnel(ctx, "non-existent")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Save and Get Persona", func(t *testing.T) {
		p := contractPersona("persona-b")
		require.NoError(t, store.SavePersona(ctx, p))

		loaded, err := store.GetPersona(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, loaded)
	})

	t.Run("List Personas In Id Order", func(t *testing.T) {
		require.NoError(t, store.SavePersona(ctx, contractPersona("persona-a")))

		list, err := store.ListPersonas(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "persona-a", list[0].ID)
		assert.Equal(t, "persona-b", list[1].ID)
	})

	t.Run("Reject Invalid Persona", func(t *testing.T) {
		bad := contractPersona("persona-bad")
		bad.Traits.Patience = 0
		assert.ErrorIs(t, store.SavePersona(ctx, bad), domain.ErrInvalidConfiguration)
	})

	t.Run("Delete Persona", func(t *testing.T) {
		require.NoError(t, store.DeletePersona(ctx, "persona-a"))
		_, err := store.GetPersona(ctx, "persona-a")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, store.DeletePersona(ctx, "persona-a"), domain.ErrNotFound)
	})

	t.Run("Funnels And Personas Do Not Collide", func(t *testing.T) {
		require.NoError(t, store.SavePersona(ctx, contractPersona("shared-id")))
		require.NoError(t, store.SaveFunnel(ctx, contractFunnel("shared-id")))

		_, err := store.GetPersona(ctx, "shared-id")
		assert.NoError(t, err)
		_, err = store.GetFunnel(ctx, "shared-id")
		assert.NoError(t, err)

		require.NoError(t, store.DeleteFunnel(ctx, "shared-id"))
		_, err = store.GetPersona(ctx, "shared-id")
		assert.NoError(t, err)
		require.NoError(t, store.DeletePersona(ctx, "shared-id"))
	})
}
