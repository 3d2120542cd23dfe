package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRedactsContactDetails(t *testing.T) {
	out := Sanitize("Reach me at jane.doe+work@example.com or +1 (415) 555-0100 anytime")

	assert.NotContains(t, out, "example.com")
	assert.NotContains(t, out, "555")
	assert.Contains(t, out, "[email]")
	assert.Contains(t, out, "[phone]")
}

func TestSanitizeStripsHTML(t *testing.T) {
	out := Sanitize("<div><script>alert(1)</script><p>Shipped a payments platform</p></div>")

	assert.Equal(t, "Shipped a payments platform", out)
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	out := Sanitize("  spread \n\t across   lines ")

	assert.Equal(t, "spread across lines", out)
}

func TestSanitizeEmpty(t *testing.T) {
	assert.Equal(t, "", Sanitize("   \n "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	// rune safety
	assert.Equal(t, "日本…", Truncate("日本語のテキスト", 2))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "senior-engineer-acme", Slugify("Senior Engineer @ Acme!"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSlugSetCollisions(t *testing.T) {
	slugs := slugSet{}

	assert.Equal(t, "work-acme", slugs.Unique("work-acme"))
	assert.Equal(t, "work-acme-2", slugs.Unique("work-acme"))
	assert.Equal(t, "work-acme-3", slugs.Unique("work-acme"))
	assert.Equal(t, "item", slugs.Unique(""))
}
