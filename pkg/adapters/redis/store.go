package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/impulse/pkg/domain"
)

const (
	kindFunnel  = "funnel"
	kindPersona = "persona"

	// noExpiry is the index score used when no TTL is set (2100-01-01).
	noExpiry = 4102444800
)

// Store implements ports.DefinitionStore using Redis.
//
// Each definition is a JSON string under <prefix><kind>:<id>. A sorted set
// per kind (<prefix><kind>s) indexes ids, scored by expiry time so List can
// prune entries whose keys have expired.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored definitions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "impulse:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(kind, id string) string {
	return s.prefix + kind + ":" + id
}

func (s *Store) indexKey(kind string) string {
	return s.prefix + kind + "s"
}

// SaveFunnel validates and stores f.
func (s *Store) SaveFunnel(ctx context.Context, f domain.Funnel) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == "" {
		return &domain.ConfigError{Field: "funnel.id", Reason: "funnel has no id"}
	}
	return s.save(ctx, kindFunnel, f.ID, f)
}

// GetFunnel loads a funnel by id.
func (s *Store) GetFunnel(ctx context.Context, id string) (domain.Funnel, error) {
	var f domain.Funnel
	if err := s.load(ctx, kindFunnel, id, &f); err != nil {
		return domain.Funnel{}, err
	}
	return f, nil
}

// ListFunnels loads every indexed funnel ordered by id.
func (s *Store) ListFunnels(ctx context.Context) ([]domain.Funnel, error) {
	return list[domain.Funnel](ctx, s, kindFunnel)
}

// DeleteFunnel removes a funnel and its index entry.
func (s *Store) DeleteFunnel(ctx context.Context, id string) error {
	return s.delete(ctx, kindFunnel, id)
}

// SavePersona validates and stores p.
func (s *Store) SavePersona(ctx context.Context, p domain.Persona) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.save(ctx, kindPersona, p.ID, p)
}

// GetPersona loads a persona by id.
func (s *Store) GetPersona(ctx context.Context, id string) (domain.Persona, error) {
	var p domain.Persona
	if err := s.load(ctx, kindPersona, id, &p); err != nil {
		return domain.Persona{}, err
	}
	return p, nil
}

// ListPersonas loads every indexed persona ordered by id.
func (s *Store) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	return list[domain.Persona](ctx, s, kindPersona)
}

// DeletePersona removes a persona and its index entry.
func (s *Store) DeletePersona(ctx context.Context, id string) error {
	return s.delete(ctx, kindPersona, id)
}

func (s *Store) save(ctx context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiry
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(kind, id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(kind), backend.Z{Score: score, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", kind, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, kind, id string, v any) error {
	val, err := s.client.Get(ctx, s.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to get %s from redis: %w", kind, err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s %q: %w", kind, id, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, kind, id string) error {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(kind, id))
	pipe.ZRem(ctx, s.indexKey(kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", kind, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// ids prunes expired index entries and returns the remaining ids sorted.
func (s *Store) ids(ctx context.Context, kind string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(kind), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired %ss: %w", kind, err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	slices.Sort(ids)
	return ids, nil
}

func list[T any](ctx context.Context, s *Store, kind string) ([]T, error) {
	ids, err := s.ids(ctx, kind)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*backend.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.key(kind, id))
	}
	// Individual misses surface as backend.Nil on their command.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("failed to load %ss from redis: %w", kind, err)
	}

	out := make([]T, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s %q: %w", kind, ids[i], err)
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s %q: %w", kind, ids[i], err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
