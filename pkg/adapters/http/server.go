package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/impulse"
	"github.com/aretw0/impulse/internal/logging"
	"github.com/aretw0/impulse/pkg/definition"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
)

// Server exposes a simulator's run controls and live views over HTTP.
type Server struct {
	Controller ports.Controller
	Store      ports.DefinitionStore
	Streams    *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStore enables stored definitions: /runs accepts ids and the
// /funnels and /personas routes are mounted.
func WithStore(store ports.DefinitionStore) Option {
	return func(s *Server) {
		s.Store = store
	}
}

// WithStreams mounts GET /events backed by sm. Pass sm.Hooks() to the
// simulator so ticks reach subscribers.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for ctrl.
func NewHandler(ctrl ports.Controller, opts ...Option) http.Handler {
	server := &Server{
		Controller: ctrl,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)

	r.Get("/aggregate", server.GetAggregate)
	r.Get("/population", server.GetPopulation)
	r.Get("/summary", server.GetSummary)

	r.Post("/runs", server.StartRun)
	r.Delete("/runs/current", server.StopRun)
	r.Put("/speed", server.PutSpeed)
	r.Put("/customers", server.PutCustomers)

	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}
	if server.Store != nil {
		server.mountDefinitions(r)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the body of POST /runs. Customers and Speed default to
// the controller's current settings.
type StartRequest struct {
	Persona   definition.Source `json:"persona"`
	Funnel    definition.Source `json:"funnel"`
	Customers *int              `json:"customers,omitempty"`
	Speed     *float64          `json:"speed,omitempty"`
}

// RunResponse describes the run started or stopped.
type RunResponse struct {
	RunID     string  `json:"run_id,omitempty"`
	Seed      uint64  `json:"seed"`
	Running   bool    `json:"running"`
	Customers int     `json:"customers"`
	Speed     float64 `json:"speed"`
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "impulse-http",
		"version": impulse.Version,
	}, s.logger)
}

// GetAggregate handles GET /aggregate.
func (s *Server) GetAggregate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.Aggregate(), s.logger)
}

// GetPopulation handles GET /population.
func (s *Server) GetPopulation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.Population(), s.logger)
}

// GetSummary handles GET /summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.Summary(), s.logger)
}

// StartRun handles POST /runs.
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("StartRun: Invalid request body", "error", err)
		return
	}

	persona, err := definition.ResolvePersona(r.Context(), s.Store, body.Persona)
	if err != nil {
		s.writeError(w, "StartRun", err)
		return
	}
	funnel, err := definition.ResolveFunnel(r.Context(), s.Store, body.Funnel)
	if err != nil {
		s.writeError(w, "StartRun", err)
		return
	}

	customers := s.Controller.CustomerCount()
	if body.Customers != nil {
		customers = *body.Customers
	}
	speed := s.Controller.Speed()
	if body.Speed != nil {
		speed = *body.Speed
	}

	if err := s.Controller.Start(r.Context(), &persona, &funnel, customers, speed); err != nil {
		s.writeError(w, "StartRun", err)
		return
	}
	s.logger.Info("Run started over HTTP", "funnel_id", funnel.ID, "persona_id", persona.ID, "customers", customers)
	writeJSON(w, http.StatusCreated, s.runResponse(), s.logger)
}

// StopRun handles DELETE /runs/current.
func (s *Server) StopRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Controller.Stop(); err != nil {
		s.writeError(w, "StopRun", err)
		return
	}
	writeJSON(w, http.StatusOK, s.runResponse(), s.logger)
}

// PutSpeed handles PUT /speed with body {"speed": x}.
func (s *Server) PutSpeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutSpeed: Invalid request body", "error", err)
		return
	}
	if err := s.Controller.SetSpeed(body.Speed); err != nil {
		s.writeError(w, "PutSpeed", err)
		return
	}
	writeJSON(w, http.StatusOK, s.runResponse(), s.logger)
}

// PutCustomers handles PUT /customers with body {"customers": n}.
func (s *Server) PutCustomers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Customers int `json:"customers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutCustomers: Invalid request body", "error", err)
		return
	}
	if err := s.Controller.SetCustomerCount(body.Customers); err != nil {
		s.writeError(w, "PutCustomers", err)
		return
	}
	writeJSON(w, http.StatusOK, s.runResponse(), s.logger)
}

// runIdentity is implemented by *impulse.Simulator.
type runIdentity interface {
	RunID() string
	Seed() uint64
}

func (s *Server) runResponse() RunResponse {
	resp := RunResponse{
		Running:   s.Controller.Running(),
		Customers: s.Controller.CustomerCount(),
		Speed:     s.Controller.Speed(),
	}
	if id, ok := s.Controller.(runIdentity); ok {
		resp.RunID = id.RunID()
		resp.Seed = id.Seed()
	}
	return resp
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRunActive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotRunning), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err, "status", code)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()}, s.logger)
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
