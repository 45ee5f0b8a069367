package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/impulse/pkg/domain"
)

// Palette used for progress output.
const (
	colorActive    = "#818cf8"
	colorCompleted = "#22c55e"
	colorAbandoned = "#fb7185"
	colorMuted     = "#94a3b8"
)

// TextHandler prints coloured progress lines for interactive terminals.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	// Every prints a progress line every N ticks. Zero prints only when
	// the population counts change.
	Every int

	// Quiet suppresses per-customer abandonment lines.
	Quiet bool

	out  *termenv.Output
	mu   sync.Mutex
	last *domain.PopulationSnapshot
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the report renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerProfile forces a colour profile; termenv.Ascii disables
// colour entirely.
func WithTextHandlerProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.out = termenv.NewOutput(h.Writer, termenv.WithProfile(p))
	}
}

// WithTextHandlerEvery prints a progress line every n ticks.
func WithTextHandlerEvery(n int) TextHandlerOption {
	return func(h *TextHandler) {
		h.Every = n
	}
}

// WithTextHandlerQuiet suppresses abandonment lines.
func WithTextHandlerQuiet(quiet bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Quiet = quiet
	}
}

// NewTextHandler creates a handler writing to w (stdout when nil).
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	if h.out == nil {
		h.out = termenv.NewOutput(w)
	}
	return h
}

func (h *TextHandler) paint(hex, s string) string {
	return h.out.String(s).Foreground(h.out.Color(hex)).String()
}

func (h *TextHandler) Started(ctx context.Context, ev *domain.RunEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = nil

	_, err := fmt.Fprintf(h.Writer, "%s %d customers · persona %s · funnel %s · speed %gx\n",
		h.paint(colorActive, "▶ Simulating"),
		ev.Customers, SanitizeLabel(ev.PersonaID), SanitizeLabel(ev.FunnelID), ev.Speed)
	return err
}

func (h *TextHandler) Tick(ctx context.Context, ev *domain.TickEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := ev.Population
	changed := h.last == nil ||
		h.last.Active != p.Active || h.last.Completed != p.Completed || h.last.Abandoned != p.Abandoned
	due := h.Every > 0 && p.Tick%h.Every == 0
	if !changed && !due {
		return nil
	}
	h.last = &p

	_, err := fmt.Fprintf(h.Writer, "%s %s  %s  %s\n",
		h.paint(colorMuted, fmt.Sprintf("[tick %4d]", p.Tick)),
		h.paint(colorActive, fmt.Sprintf("active %d", p.Active)),
		h.paint(colorCompleted, fmt.Sprintf("completed %d", p.Completed)),
		h.paint(colorAbandoned, fmt.Sprintf("abandoned %d", p.Abandoned)),
	)
	return err
}

func (h *TextHandler) Abandon(ctx context.Context, ev *domain.CustomerEvent) error {
	if h.Quiet {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := fmt.Fprintf(h.Writer, "  %s %s left at %s (%s)\n",
		h.paint(colorAbandoned, "✗"), SanitizeLabel(ev.CustomerID), SanitizeLabel(ev.StepID), ev.Reason)
	return err
}

func (h *TextHandler) Finished(ctx context.Context, res Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.Writer, "%s %s\n", h.paint(colorCompleted, "■ Done:"), summaryLine(res.Summary))

	output := Report(res)
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.Writer, "\n[System] %s\n", msg)
	return err
}
