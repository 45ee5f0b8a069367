package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/impulse/internal/config"
	"github.com/aretw0/impulse/pkg/adapters/file"
	"github.com/aretw0/impulse/pkg/adapters/memory"
	"github.com/aretw0/impulse/pkg/adapters/redis"
	"github.com/aretw0/impulse/pkg/ports"
)

// OpenStore builds the definition store selected by cfg. The returned
// close function releases connections and is never nil.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (ports.DefinitionStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), noop, nil
	case config.DriverFile:
		return file.New(cfg.Dir), noop, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, noop, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
