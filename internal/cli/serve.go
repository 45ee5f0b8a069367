package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/internal/config"
	httpAdapter "github.com/aretw0/impulse/pkg/adapters/http"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/observability"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/presets"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Config *config.Config
	// Addr overrides Config.HTTP.Addr when set.
	Addr string
	// SeedPresets saves the built-in personas and funnels to the store.
	SeedPresets bool
}

// NewServeHandler wires a simulator, its hooks and the store into the HTTP
// adapter.
func NewServeHandler(cfg *config.Config, store ports.DefinitionStore, logger *slog.Logger) (http.Handler, *impulse.Simulator, error) {
	streams := httpAdapter.NewStreamManager(logger)
	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger), streams.Hooks()}

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithStore(store),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithLogger(logger),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, nil, err
		}
		hooks = append(hooks, metrics.Hooks())
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	simOpts := cfg.SimulatorOptions()
	simOpts = append(simOpts,
		impulse.WithLogger(logger),
		impulse.WithLifecycleHooks(observability.ChainHooks(hooks...)),
	)
	sim := impulse.New(simOpts...)
	if err := sim.SetCustomerCount(cfg.Simulation.Customers); err != nil {
		return nil, nil, err
	}
	if err := sim.SetSpeed(cfg.Simulation.Speed); err != nil {
		return nil, nil, err
	}

	return httpAdapter.NewHandler(sim, handlerOpts...), sim, nil
}

// SeedPresets saves every built-in persona and funnel to store.
func SeedPresets(ctx context.Context, store ports.DefinitionStore) error {
	for _, p := range presets.Personas() {
		if err := store.SavePersona(ctx, p); err != nil {
			return fmt.Errorf("seed persona %q: %w", p.Name, err)
		}
	}
	for _, f := range presets.Funnels() {
		if err := store.SaveFunnel(ctx, f); err != nil {
			return fmt.Errorf("seed funnel %q: %w", f.Name, err)
		}
	}
	return nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully and stops any active run.
func Serve(ctx context.Context, opts ServeOptions, out io.Writer) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := createLogger(cfg.Log.Level)

	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.SeedPresets {
		if err := SeedPresets(ctx, store); err != nil {
			return err
		}
	}

	handler, sim, err := NewServeHandler(cfg, store, logger)
	if err != nil {
		return err
	}

	addr := cfg.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	printSystemMessage(out, "Starting impulse server on %s (store: %s)", srv.Addr, cfg.Store.Driver)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(out, "Shutting down...")

		if sim.Running() {
			_ = sim.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		printSystemMessage(out, "impulse server stopped gracefully")
		return nil
	}
}
