package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLatinBasics(t *testing.T) {
	tk := New(nil)

	tokens := tk.Tokenize("Built distributed systems with Go and PostgreSQL", LocaleEN)

	assert.True(t, tokens.Has("built"))
	assert.True(t, tokens.Has("distributed"))
	assert.True(t, tokens.Has("systems"))
	assert.True(t, tokens.Has("postgresql"))
	// short-token allowlist
	assert.True(t, tokens.Has("go"))
	// stop words never index
	assert.False(t, tokens.Has("with"))
	assert.False(t, tokens.Has("and"))
}

func TestTokenizeShortTokenRules(t *testing.T) {
	tk := New(nil)

	tokens := tk.Tokenize("AI on k8s at v2", LocaleEN)

	assert.True(t, tokens.Has("ai"), "allowlisted short token")
	assert.True(t, tokens.Has("k8s"), "digit-bearing token survives")
	assert.True(t, tokens.Has("v2"), "digit-bearing token survives")
	assert.False(t, tokens.Has("on"))
	assert.False(t, tokens.Has("at"))
}

func TestTokenizePunctuationVariants(t *testing.T) {
	tk := New(nil)

	tokens := tk.Tokenize("C++ and C# plus Node.js and scikit-learn", LocaleEN)

	assert.True(t, tokens.Has("c++"))
	assert.True(t, tokens.Has("cpp"))
	assert.True(t, tokens.Has("cplusplus"))
	assert.True(t, tokens.Has("csharp"))
	assert.True(t, tokens.Has("node.js"))
	assert.True(t, tokens.Has("node"))
	assert.True(t, tokens.Has("nodejs"))
	assert.True(t, tokens.Has("scikit-learn"))
	assert.True(t, tokens.Has("scikit"))
	assert.True(t, tokens.Has("learn"))
	assert.True(t, tokens.Has("scikitlearn"))
}

func TestTokenizeLatinIdempotent(t *testing.T) {
	tk := New(nil)

	first := tk.Tokenize("Designed resilient payment pipelines handling millions of events", LocaleEN)
	require.NotEmpty(t, first)

	second := tk.Tokenize(strings.Join(first.Sorted(), " "), LocaleEN)
	assert.Equal(t, first, second)
}

func TestTokenizeJapanese(t *testing.T) {
	tk := New(nil)

	tokens := tk.Tokenize("東京で働いていました", LocaleJA)

	assert.True(t, tokens.Has("東京"))
	// dictionary form of 働いて
	assert.True(t, tokens.Has("働く"))
	// particles are dropped
	assert.False(t, tokens.Has("で"))
}

func TestTokenizeChinese(t *testing.T) {
	tk := New(nil)

	tokens := tk.Tokenize("我在上海开发软件", LocaleZH)

	assert.True(t, tokens.Has("上海"))
	// 开发软件 segments as one compound; search-mode must surface the
	// sub-words too or single-word queries cannot match
	assert.True(t, tokens.Has("开发"))
	assert.True(t, tokens.Has("软件"))
}

func TestNameAliasInjection(t *testing.T) {
	tk := New(map[string]string{"ケンジ": "kenji"})

	// CJK name inside an otherwise Latin question: the ja analyzer does not
	// run for locale en, so the alias path has to cover it.
	tokens := tk.Tokenize("Does ケンジ know Rust?", LocaleEN)

	assert.True(t, tokens.Has("kenji"))
	assert.True(t, tokens.Has("rust"))
}

func TestNameAliasSkippedWhenCJKTokenized(t *testing.T) {
	tk := New(map[string]string{"ケンジ": "kenji"})

	tokens := tk.Tokenize("ケンジはRustを知っていますか", LocaleJA)

	// the morphological analyzer already yielded CJK tokens, so no injection
	assert.False(t, tokens.Has("kenji"))
}

func TestTokenizeEmpty(t *testing.T) {
	tk := New(nil)

	assert.Empty(t, tk.Tokenize("", LocaleEN))
	assert.Empty(t, tk.Tokenize("   \n\t ", LocaleEN))
}
