package runtime

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/impulse/pkg/domain"
)

// TickBatch computes one tick for the whole population.
//
// Every transition is derived from the pre-tick population; the input slice
// is never written. Customer i draws only from streams[i], so the result is
// identical whether the batch runs sequentially or with parallelism > 1.
func TickBatch(population []domain.Customer, funnel domain.Funnel, speed float64, streams []RandomSource, now time.Time, parallelism int) ([]domain.Transition, error) {
	if len(streams) != len(population) {
		return nil, &domain.InvariantViolation{
			Op:     "tick",
			Detail: fmt.Sprintf("%d random streams for %d customers", len(streams), len(population)),
		}
	}

	out := make([]domain.Transition, len(population))
	if parallelism <= 1 {
		for i, c := range population {
			t, err := Advance(c, funnel, speed, streams[i], now)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, c := range population {
		g.Go(func() error {
			t, err := Advance(c, funnel, speed, streams[i], now)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
