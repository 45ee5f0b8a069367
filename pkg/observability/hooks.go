package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/impulse/pkg/domain"
)

// LoggingHooks logs run lifecycle events at info and per-customer events at
// debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	run := func(msg string) func(context.Context, *domain.RunEvent) {
		return func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, msg,
				"run_id", e.RunID,
				"funnel_id", e.FunnelID,
				"persona_id", e.PersonaID,
				"customers", e.Customers,
				"speed", e.Speed,
			)
		}
	}
	customer := func(msg string) func(context.Context, *domain.CustomerEvent) {
		return func(ctx context.Context, e *domain.CustomerEvent) {
			logger.DebugContext(ctx, msg,
				"customer_id", e.CustomerID,
				"step_id", e.StepID,
				"reason", e.Reason,
			)
		}
	}
	return domain.LifecycleHooks{
		OnRunStart:  run("run_start"),
		OnRunStop:   run("run_stop"),
		OnRunFinish: run("run_finish"),
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.DebugContext(ctx, "tick",
				"tick", e.Tick,
				"active", e.Population.Active,
				"completed", e.Population.Completed,
				"abandoned", e.Population.Abandoned,
			)
		},
		OnAdvance:  customer("customer_advance"),
		OnComplete: customer("customer_complete"),
		OnAbandon:  customer("customer_abandon"),
	}
}

// ChainHooks combines hook sets; each callback runs in argument order.
func ChainHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnRunStart = chain(out.OnRunStart, h.OnRunStart)
		out.OnRunStop = chain(out.OnRunStop, h.OnRunStop)
		out.OnRunFinish = chain(out.OnRunFinish, h.OnRunFinish)
		out.OnTick = chain(out.OnTick, h.OnTick)
		out.OnAdvance = chain(out.OnAdvance, h.OnAdvance)
		out.OnComplete = chain(out.OnComplete, h.OnComplete)
		out.OnAbandon = chain(out.OnAbandon, h.OnAbandon)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}
