package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)

	lines := strings.Split(strings.Trim(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, buf.String(), "(_)_ __ ___")
}

func TestNewRenderer_FileIsPlain(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(nil))

	out, err := NewRenderer(f)("# Report\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Report")
}
