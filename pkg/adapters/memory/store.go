package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/impulse/pkg/domain"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	funnels  map[string]domain.Funnel
	personas map[string]domain.Persona
	mu       sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		funnels:  make(map[string]domain.Funnel),
		personas: make(map[string]domain.Persona),
	}
}

// SaveFunnel validates and stores a copy of f.
func (s *Store) SaveFunnel(ctx context.Context, f domain.Funnel) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == "" {
		return &domain.ConfigError{Field: "funnel.id", Reason: "funnel has no id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.funnels[f.ID] = f.Clone()
	return nil
}

// GetFunnel returns a copy of the stored funnel.
func (s *Store) GetFunnel(ctx context.Context, id string) (domain.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.funnels[id]
	if !ok {
		return domain.Funnel{}, fmt.Errorf("funnel %q: %w", id, domain.ErrNotFound)
	}
	return f.Clone(), nil
}

// ListFunnels returns copies of every funnel ordered by id.
func (s *Store) ListFunnels(ctx context.Context) ([]domain.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Funnel, 0, len(s.funnels))
	for _, id := range slices.Sorted(maps.Keys(s.funnels)) {
		out = append(out, s.funnels[id].Clone())
	}
	return out, nil
}

// DeleteFunnel removes a funnel.
func (s *Store) DeleteFunnel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.funnels[id]; !ok {
		return fmt.Errorf("funnel %q: %w", id, domain.ErrNotFound)
	}
	delete(s.funnels, id)
	return nil
}

// SavePersona validates and stores p.
func (s *Store) SavePersona(ctx context.Context, p domain.Persona) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas[p.ID] = p
	return nil
}

// GetPersona returns the stored persona.
func (s *Store) GetPersona(ctx context.Context, id string) (domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.personas[id]
	if !ok {
		return domain.Persona{}, fmt.Errorf("persona %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// ListPersonas returns every persona ordered by id.
func (s *Store) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.personas))
	slices.SortFunc(out, func(a, b domain.Persona) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// DeletePersona removes a persona.
func (s *Store) DeletePersona(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.personas[id]; !ok {
		return fmt.Errorf("persona %q: %w", id, domain.ErrNotFound)
	}
	delete(s.personas, id)
	return nil
}
