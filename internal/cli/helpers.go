package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/impulse/internal/logging"
	"github.com/aretw0/impulse/pkg/definition"
	"github.com/aretw0/impulse/pkg/domain"
	"github.com/aretw0/impulse/pkg/ports"
)

// createLogger configures the application logger. It writes to Stderr so
// run output on Stdout stays clean.
func createLogger(level string) *slog.Logger {
	return logging.New(logging.ParseLevel(level))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// terminal returns w as a file when it is one.
func terminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	return f, ok
}

// DefinitionRef points at a persona or funnel given on the command line.
// At most one field should be set; File wins over ID, ID over Preset.
type DefinitionRef struct {
	Preset string
	File   string
	ID     string
}

func (r DefinitionRef) needsStore() bool {
	return r.File == "" && r.ID != ""
}

func (r DefinitionRef) source() definition.Source {
	return definition.Source{ID: r.ID, Preset: r.Preset}
}

func resolvePersona(ctx context.Context, store ports.DefinitionStore, ref DefinitionRef) (domain.Persona, error) {
	if ref.File == "" {
		return definition.ResolvePersona(ctx, store, ref.source())
	}
	doc, err := definition.LoadFile(ref.File)
	if err != nil {
		return domain.Persona{}, err
	}
	if doc.Persona == nil {
		return domain.Persona{}, &domain.ConfigError{Field: "persona", Reason: fmt.Sprintf("%s is a %s document", ref.File, doc.Kind)}
	}
	return *doc.Persona, nil
}

func resolveFunnel(ctx context.Context, store ports.DefinitionStore, ref DefinitionRef) (domain.Funnel, error) {
	if ref.File == "" {
		return definition.ResolveFunnel(ctx, store, ref.source())
	}
	doc, err := definition.LoadFile(ref.File)
	if err != nil {
		return domain.Funnel{}, err
	}
	if doc.Funnel == nil {
		return domain.Funnel{}, &domain.ConfigError{Field: "funnel", Reason: fmt.Sprintf("%s is a %s document", ref.File, doc.Kind)}
	}
	return *doc.Funnel, nil
}

// handleExecutionError hides interruptions, which end a run normally.
func handleExecutionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
