package ports

import (
	"context"

	"github.com/aretw0/impulse/pkg/domain"
)

// DefinitionStore persists funnel and persona definitions.
//
// Implementations validate on save (domain.ErrInvalidConfiguration), return
// domain.ErrNotFound for unknown ids on Get and Delete, list in ascending id
// order, and never hand out values that alias their internal state.
type DefinitionStore interface {
	SaveFunnel(ctx context.Context, f domain.Funnel) error
	GetFunnel(ctx context.Context, id string) (domain.Funnel, error)
	ListFunnels(ctx context.Context) ([]domain.Funnel, error)
	DeleteFunnel(ctx context.Context, id string) error

	SavePersona(ctx context.Context, p domain.Persona) error
	GetPersona(ctx context.Context, id string) (domain.Persona, error)
	ListPersonas(ctx context.Context) ([]domain.Persona, error)
	DeletePersona(ctx context.Context, id string) error
}
