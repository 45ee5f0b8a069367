package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWrap = 100

// NewRenderer returns a function that renders markdown for f. Terminals get
// an auto-detected glamour style wrapped to their width; pipes and files get
// the plain "notty" style.
func NewRenderer(f *os.File) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty"), glamour.WithWordWrap(defaultWrap)}
	if IsTerminal(f) {
		width := defaultWrap
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && w < width {
			width = w
		}
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle(), glamour.WithWordWrap(width)}
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
