package random

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSeedPrefersPinned(t *testing.T) {
	pinned := uint64(77)
	seed, source, err := ResolveSeed(&pinned, func() (uint64, error) {
		t.Fatal("generator must not be called")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(77), seed)
	assert.Equal(t, SeedSourcePinned, source)
}

func TestResolveSeedGenerates(t *testing.T) {
	seed, source, err := ResolveSeed(nil, func() (uint64, error) { return 123, nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(123), seed)
	assert.Equal(t, SeedSourceGenerated, source)
}

func TestResolveSeedPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	_, _, err := ResolveSeed(nil, func() (uint64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
