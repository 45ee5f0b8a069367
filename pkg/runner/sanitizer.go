package runner

import (
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxLabelSize caps how many runes of a user-supplied name are
	// printed.
	DefaultMaxLabelSize = 80
	// EnvMaxLabelSize is the environment variable to override the default
	EnvMaxLabelSize = "IMPULSE_MAX_LABEL_SIZE"
)

// SanitizeLabel prepares a user-supplied name (funnel, step, persona) for a
// single terminal line: invalid UTF-8 becomes U+FFFD, control characters
// are dropped (which also neutralises ANSI escapes) and overlong labels are
// truncated with an ellipsis.
func SanitizeLabel(label string) string {
	if !utf8.ValidString(label) {
		label = strings.ToValidUTF8(label, "�")
	}

	// Fast path: no control chars.
	if strings.IndexFunc(label, unicode.IsControl) >= 0 {
		var b strings.Builder
		b.Grow(len(label))
		for _, r := range label {
			if !unicode.IsControl(r) {
				b.WriteRune(r)
			}
		}
		label = b.String()
	}

	limit := getMaxLabelSize()
	if utf8.RuneCountInString(label) > limit {
		runes := []rune(label)
		label = string(runes[:limit-1]) + "…"
	}
	return label
}

func getMaxLabelSize() int {
	if val := os.Getenv(EnvMaxLabelSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 1 {
			return size
		}
	}
	return DefaultMaxLabelSize
}
