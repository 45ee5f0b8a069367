package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the impulse ASCII art banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  _                       _          ", "#34d399"},
		{" (_)_ __ ___  _ __  _   _| |___  ___ ", "#2dd4bf"},
		{" | | '_ ` _ \\| '_ \\| | | | / __|/ _ \\", "#22d3ee"},
		{" | | | | | | | |_) | |_| | \\__ \\  __/", "#38bdf8"},
		{" |_|_| |_| |_| .__/ \\__,_|_|___/\\___|", "#60a5fa"},
		{"             |_|                     ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
