package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/impulse/internal/config"
	"github.com/aretw0/impulse/pkg/adapters/mcp"
)

// Supported MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Config    *config.Config
	Transport string
	Port      int
}

// ServeMCP runs the MCP server on the chosen transport.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
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

	srv := mcp.NewServer(
		mcp.WithStore(store),
		mcp.WithLogger(logger),
		mcp.WithSimulatorOptions(cfg.SimulatorOptions()...),
	)

	switch opts.Transport {
	case TransportStdio, "":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting impulse MCP Server (Stdio)...")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting impulse MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
