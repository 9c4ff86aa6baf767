// Package slug turns titles and tag names into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength matches the size of the slug columns.
const MaxLength = 250

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases s, drops diacritics and collapses every run of characters
// outside [a-z0-9] into a single hyphen.
func Make(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
		if b.Len() >= MaxLength {
			break
		}
	}

	out := b.String()
	if len(out) > MaxLength {
		out = out[:MaxLength]
	}
	return strings.TrimRight(out, "-")
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && len(s) <= MaxLength && Make(s) == s
}
