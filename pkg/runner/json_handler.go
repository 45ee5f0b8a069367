package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aretw0/impulse/pkg/domain"
)

// Line is one NDJSON record written by JSONHandler. Exactly one payload
// field is set, matching Type.
type Line struct {
	Type       string                     `json:"type"`
	Run        *domain.RunEvent           `json:"run,omitempty"`
	Population *domain.PopulationSnapshot `json:"population,omitempty"`
	Customer   *domain.CustomerEvent      `json:"customer,omitempty"`
	Result     *Result                    `json:"result,omitempty"`
	Message    string                     `json:"message,omitempty"`
}

// JSONHandler writes one JSON object per line.
type JSONHandler struct {
	Encoder *json.Encoder

	// Ticks includes a population line per tick. Without it only run,
	// abandonment and result lines are written.
	Ticks bool

	mu sync.Mutex
}

// NewJSONHandler creates a handler for NDJSON output on w (stdout when nil).
func NewJSONHandler(w io.Writer, ticks bool) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{Encoder: json.NewEncoder(w), Ticks: ticks}
}

func (h *JSONHandler) write(l Line) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(l)
}

func (h *JSONHandler) Started(ctx context.Context, ev *domain.RunEvent) error {
	return h.write(Line{Type: string(ev.Type), Run: ev})
}

func (h *JSONHandler) Tick(ctx context.Context, ev *domain.TickEvent) error {
	if !h.Ticks {
		return nil
	}
	p := ev.Population
	return h.write(Line{Type: string(ev.Type), Population: &p})
}

func (h *JSONHandler) Abandon(ctx context.Context, ev *domain.CustomerEvent) error {
	return h.write(Line{Type: string(ev.Type), Customer: ev})
}

func (h *JSONHandler) Finished(ctx context.Context, res Result) error {
	return h.write(Line{Type: "result", Result: &res})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.write(Line{Type: "system", Message: msg})
}
