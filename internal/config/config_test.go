package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/impulse/pkg/domain"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickInterval)
	assert.Len(t, cfg.SimulatorOptions(), 2)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "impulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulation:
  customers: 40
  speed: 1.5
  tick_interval: 50ms
  seed: 7
log:
  level: debug
store:
  driver: file
  dir: /tmp/defs
`), 0o644))

	t.Setenv("IMPULSE_CUSTOMERS", "12")
	t.Setenv("IMPULSE_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12, cfg.Simulation.Customers)
	assert.Equal(t, 1.5, cfg.Simulation.Speed)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickInterval)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Equal(t, uint64(7), *cfg.Simulation.Seed)
	assert.Equal(t, 1, cfg.Simulation.Parallelism, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "/tmp/defs", cfg.Store.Dir)
	assert.Equal(t, "redis:6380", cfg.Store.RedisAddr)
	assert.Len(t, cfg.SimulatorOptions(), 3)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load("nope.yaml")
	assert.Error(t, err)
}

func TestLoad_ZeroSeedIsPinned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  seed: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Seed)
	assert.Zero(t, *cfg.Simulation.Seed)
	assert.Len(t, cfg.SimulatorOptions(), 3)

	assert.Nil(t, Default().Simulation.Seed)
	assert.Len(t, Default().SimulatorOptions(), 2)
}

func TestLoad_BadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("IMPULSE_SPEED", "fast")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero customers", func(c *Config) { c.Simulation.Customers = 0 }},
		{"zero speed", func(c *Config) { c.Simulation.Speed = 0 }},
		{"nan speed", func(c *Config) { c.Simulation.Speed = math.NaN() }},
		{"infinite speed", func(c *Config) { c.Simulation.Speed = math.Inf(1) }},
		{"zero interval", func(c *Config) { c.Simulation.TickInterval = 0 }},
		{"zero parallelism", func(c *Config) { c.Simulation.Parallelism = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"file without dir", func(c *Config) { c.Store.Driver = DriverFile; c.Store.Dir = "" }},
		{"redis without addr", func(c *Config) { c.Store.Driver = DriverRedis; c.Store.RedisAddr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfiguration)
		})
	}
}
