package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/internal/logging"
	"github.com/aretw0/impulse/pkg/definition"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
	"github.com/aretw0/impulse/pkg/presets"
	"github.com/aretw0/impulse/pkg/runner"
)

// Default run size for simulate_funnel when the caller gives none.
const (
	DefaultCustomers = 100
	MaxCustomers     = 10000
)

// PresetsResponse lists the built-in definitions.
type PresetsResponse struct {
	Personas []domain.Persona `json:"personas" jsonschema_description:"Built-in personas"`
	Funnels  []domain.Funnel  `json:"funnels" jsonschema_description:"Built-in funnels"`
}

// Server exposes funnel simulation as MCP tools.
type Server struct {
	store     ports.DefinitionStore
	simOpts   []impulse.Option
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithStore lets tools resolve persona_id and funnel_id arguments.
func WithStore(store ports.DefinitionStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithSimulatorOptions adds options to every simulator a tool creates.
func WithSimulatorOptions(opts ...impulse.Option) Option {
	return func(s *Server) {
		s.simOpts = append(s.simOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("impulse-mcp", impulse.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: simulate_funnel
	simulateTool := mcp.NewTool("simulate_funnel",
		mcp.WithDescription("Simulate synthetic customers of one persona moving through a funnel and report where and why they abandon."),
		mcp.WithString("persona", mcp.Description("Built-in persona name, e.g. \"Budget Hunter\"")),
		mcp.WithString("persona_id", mcp.Description("Id of a stored persona")),
		mcp.WithString("persona_json", mcp.Description("Inline persona document as a JSON object")),
		mcp.WithString("funnel", mcp.Description("Built-in funnel name (defaults to \"Simple Product Page\")")),
		mcp.WithString("funnel_id", mcp.Description("Id of a stored funnel")),
		mcp.WithString("funnel_json", mcp.Description("Inline funnel document as a JSON object")),
		mcp.WithNumber("customers", mcp.Description("Number of customers (default 100)")),
		mcp.WithNumber("speed", mcp.Description("Speed multiplier (default 1, at least 0.5)")),
		mcp.WithString("seed", mcp.Description("Seed to replay a run (optional)")),
		mcp.WithOutputSchema[runner.Result](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	// TOOL: list_presets
	presetsTool := mcp.NewTool("list_presets",
		mcp.WithDescription("List the built-in personas and funnels."),
		mcp.WithOutputSchema[PresetsResponse](),
	)
	s.mcpServer.AddTool(presetsTool, mcp.NewStructuredToolHandler(s.handleListPresets))
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (runner.Result, error) {
	personaSrc, err := source(args, "persona")
	if err != nil {
		return runner.Result{}, err
	}
	funnelSrc, err := source(args, "funnel")
	if err != nil {
		return runner.Result{}, err
	}

	persona, err := definition.ResolvePersona(ctx, s.store, personaSrc)
	if err != nil {
		return runner.Result{}, fmt.Errorf("persona: %w", err)
	}
	funnel, err := definition.ResolveFunnel(ctx, s.store, funnelSrc)
	if err != nil {
		return runner.Result{}, fmt.Errorf("funnel: %w", err)
	}

	customers := DefaultCustomers
	if v, ok := args["customers"].(float64); ok {
		customers = int(v)
	}
	if customers > MaxCustomers {
		return runner.Result{}, &domain.ConfigError{Field: "customers", Reason: fmt.Sprintf("at most %d customers per tool call", MaxCustomers)}
	}
	speed := 1.0
	if v, ok := args["speed"].(float64); ok {
		speed = v
	}
	if minSpeed := domain.RecommendedSpeedRange[0]; !(speed >= minSpeed) {
		return runner.Result{}, &domain.ConfigError{Field: "speed", Reason: fmt.Sprintf("at least %v per tool call, got %v", minSpeed, speed)}
	}

	opts := append([]impulse.Option(nil), s.simOpts...)
	if raw, ok := args["seed"]; ok {
		seed, err := parseSeed(raw)
		if err != nil {
			return runner.Result{}, err
		}
		opts = append(opts, impulse.WithSeed(seed))
	}

	res, err := runner.Simulate(ctx, runner.StartRequest{
		Persona:   persona,
		Funnel:    funnel,
		Customers: customers,
		Speed:     speed,
	}, nil, opts...)
	if err != nil {
		s.logger.Warn("MCP simulate_funnel failed", "error", err)
		return runner.Result{}, fmt.Errorf("simulate failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleListPresets(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PresetsResponse, error) {
	return PresetsResponse{Personas: presets.Personas(), Funnels: presets.Funnels()}, nil
}

// source reads the <name>, <name>_id and <name>_json arguments.
func source(args map[string]interface{}, name string) (definition.Source, error) {
	var src definition.Source
	src.Preset, _ = args[name].(string)
	src.ID, _ = args[name+"_id"].(string)
	if raw, ok := args[name+"_json"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &src.Document); err != nil {
			return definition.Source{}, &domain.ConfigError{Field: name + "_json", Reason: err.Error()}
		}
	}
	return src, nil
}

func parseSeed(raw any) (uint64, error) {
	switch v := raw.(type) {
	case string:
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, &domain.ConfigError{Field: "seed", Reason: err.Error()}
		}
		return seed, nil
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, &domain.ConfigError{Field: "seed", Reason: "must be a non-negative integer"}
		}
		return uint64(v), nil
	default:
		return 0, &domain.ConfigError{Field: "seed", Reason: fmt.Sprintf("unsupported type %T", raw)}
	}
}

func (s *Server) registerResources() {
	// EXPOSE: impulse://presets
	s.mcpServer.AddResource(mcp.NewResource("impulse://presets", "Built-in personas and funnels",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(PresetsResponse{Personas: presets.Personas(), Funnels: presets.Funnels()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode presets: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "impulse://presets",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
