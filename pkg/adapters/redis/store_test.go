package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/adapters/redis"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/presets"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunDefinitionStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	f := presets.SimpleProductPage()

	require.NoError(t, store.SaveFunnel(ctx, f))

	assert.True(t, mr.Exists("custom:app:funnel:"+f.ID), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:funnels"), "Expected index with custom prefix to exist")

	list, err := store.ListFunnels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f, list[0])
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()
	p := presets.Personas()[0]

	require.NoError(t, store.SavePersona(ctx, p))
	list, err := store.ListPersonas(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mr.FastForward(2 * time.Second)

	_, err = store.GetPersona(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The index entry may outlive the key; listing skips it either way.
	list, err = store.ListPersonas(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
