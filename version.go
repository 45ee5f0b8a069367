package impulse

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the released version of impulse.
var Version = strings.TrimSpace(version)
