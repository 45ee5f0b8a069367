// Package ids generates the human-readable unique identifiers used for
// funnels, steps, personas and runs.
package ids

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// New returns "<kind>-<slug(label)>-<uuid>", or "<kind>-<uuid>" when label
// has no usable characters.
func New(kind, label string) string {
	if s := Slug(label); s != "" {
		return kind + "-" + s + "-" + uuid.NewString()
	}
	return kind + "-" + uuid.NewString()
}

// Slug lowercases label and collapses every run of non-alphanumerics into
// a single dash.
func Slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
