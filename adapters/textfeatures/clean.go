package textfeatures

import (
	"strings"
	"unicode"
)

// Clean strips punctuation and symbols and collapses whitespace. Letters, numbers and
// underscores survive; every other run of characters becomes a single space.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}
