package ports

import (
	"context"

	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
)

// Controller is the run-control surface of a simulator.
// *impulse.Simulator implements it.
type Controller interface {
	Start(ctx context.Context, persona *domain.Persona, funnel *domain.Funnel, customerCount int, speed float64) error
	Stop() error
	SetSpeed(v float64) error
	SetCustomerCount(n int) error
	Speed() float64
	CustomerCount() int
	Running() bool

	Aggregate() domain.Aggregate
	Population() domain.PopulationSnapshot
	Summary() observability.Summary
}
