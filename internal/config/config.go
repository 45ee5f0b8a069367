// Package config loads impulse settings from a YAML file and IMPULSE_*
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/pkg/domain"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "impulse.yaml"

// Config is the full impulse configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	HTTP       HTTPConfig       `yaml:"http"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// SimulationConfig holds run defaults.
type SimulationConfig struct {
	Customers    int           `yaml:"customers" env:"IMPULSE_CUSTOMERS"`
	Speed        float64       `yaml:"speed" env:"IMPULSE_SPEED"`
	TickInterval time.Duration `yaml:"tick_interval" env:"IMPULSE_TICK_INTERVAL"`
	// Seed fixes the random stream when set, zero included.
	Seed        *uint64 `yaml:"seed,omitempty" env:"IMPULSE_SEED"`
	Parallelism int     `yaml:"parallelism" env:"IMPULSE_PARALLELISM"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"IMPULSE_LOG_LEVEL"`
}

// StoreConfig selects the definition store.
type StoreConfig struct {
	Driver    string `yaml:"driver" env:"IMPULSE_STORE"`
	Dir       string `yaml:"dir,omitempty" env:"IMPULSE_STORE_DIR"`
	RedisAddr string `yaml:"redis_addr,omitempty" env:"IMPULSE_REDIS_ADDR"`
	RedisDB   int    `yaml:"redis_db,omitempty" env:"IMPULSE_REDIS_DB"`
	// RedisPassword is only read from the environment.
	RedisPassword string        `yaml:"-" env:"IMPULSE_REDIS_PASSWORD"`
	Prefix        string        `yaml:"prefix,omitempty" env:"IMPULSE_REDIS_PREFIX"`
	TTL           time.Duration `yaml:"ttl,omitempty" env:"IMPULSE_REDIS_TTL"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"IMPULSE_HTTP_ADDR"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"IMPULSE_METRICS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Customers:    20,
			Speed:        1,
			TickInterval: impulse.DefaultTickInterval,
			Parallelism:  1,
		},
		Log:     LogConfig{Level: "warn"},
		Store:   StoreConfig{Driver: DriverMemory, Dir: ".impulse", RedisAddr: "localhost:6379", Prefix: "impulse:"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path reads DefaultPath when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Simulation.Customers < 1 {
		return &domain.ConfigError{Field: "simulation.customers", Reason: fmt.Sprintf("must be at least 1, got %d", c.Simulation.Customers)}
	}
	if !domain.ValidSpeed(c.Simulation.Speed) {
		return &domain.ConfigError{Field: "simulation.speed", Reason: fmt.Sprintf("must be positive and finite, got %v", c.Simulation.Speed)}
	}
	if c.Simulation.TickInterval <= 0 {
		return &domain.ConfigError{Field: "simulation.tick_interval", Reason: fmt.Sprintf("must be positive, got %v", c.Simulation.TickInterval)}
	}
	if c.Simulation.Parallelism < 1 {
		return &domain.ConfigError{Field: "simulation.parallelism", Reason: fmt.Sprintf("must be at least 1, got %d", c.Simulation.Parallelism)}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return &domain.ConfigError{Field: "log.level", Reason: fmt.Sprintf("invalid level %q (valid: debug, info, warn, error)", c.Log.Level)}
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Dir == "" {
			return &domain.ConfigError{Field: "store.dir", Reason: "required for the file driver"}
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return &domain.ConfigError{Field: "store.redis_addr", Reason: "required for the redis driver"}
		}
	default:
		return &domain.ConfigError{Field: "store.driver", Reason: fmt.Sprintf("unknown driver %q (valid: memory, file, redis)", c.Store.Driver)}
	}
	return nil
}

// SimulatorOptions translates the simulation section into simulator options.
func (c *Config) SimulatorOptions() []impulse.Option {
	opts := []impulse.Option{
		impulse.WithTickInterval(c.Simulation.TickInterval),
		impulse.WithParallelism(c.Simulation.Parallelism),
	}
	if c.Simulation.Seed != nil {
		opts = append(opts, impulse.WithSeed(*c.Simulation.Seed))
	}
	return opts
}
