package corpus

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowers s and replaces non-alphanumeric runs with single dashes.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// slugSet hands out collision-safe slugs by appending a numeric suffix to
// duplicates, so two identical roles still get addressable ids.
type slugSet map[string]int

func (s slugSet) Unique(base string) string {
	if base == "" {
		base = "item"
	}
	s[base]++
	if s[base] == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, s[base])
}
