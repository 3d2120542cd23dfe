package tokenizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	"github.com/ikawaha/kagome-dict/ipa"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"
)

const (
	LocaleEN = "en"
	LocaleJA = "ja"
	LocaleZH = "zh"
)

// Set is a token set. Tokens are the search key of the corpus index, so the
// same Tokenizer instance must be used at build time and at query time.
type Set map[string]struct{}

func (s Set) Add(token string) {
	s[token] = struct{}{}
}

func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

var latinRunPattern = regexp.MustCompile(`[a-zA-Z0-9+.#-]+`)

// specialAliases maps punctuation-heavy technology names to searchable forms.
var specialAliases = map[string][]string{
	"c++":  {"cpp", "cplusplus"},
	"c#":   {"csharp"},
	"f#":   {"fsharp"},
	".net": {"dotnet"},
}

// shortAllowlist holds tokens under three characters that are meaningful
// search terms and survive the minimum-length rule.
var shortAllowlist = map[string]struct{}{
	"ai": {}, "ui": {}, "ux": {}, "go": {}, "ml": {}, "qa": {},
	"ci": {}, "cd": {}, "db": {}, "js": {}, "ts": {}, "vr": {}, "ar": {},
}

type Tokenizer struct {
	// nameAliases maps a CJK phonetic spelling of the subject's name to the
	// canonical Latin token injected when matched.
	nameAliases map[string]string

	jaOnce sync.Once
	ja     *kagome.Tokenizer
	jaErr  error

	zhOnce sync.Once
	zh     gse.Segmenter
	zhErr  error
}

func New(nameAliases map[string]string) *Tokenizer {
	normalized := make(map[string]string, len(nameAliases))
	for alias, canonical := range nameAliases {
		normalized[norm.NFKD.String(alias)] = strings.ToLower(canonical)
	}
	return &Tokenizer{nameAliases: normalized}
}

// Tokenize converts text into a locale-aware token set. It is safe for
// concurrent use; the CJK analyzers are built lazily on first use.
func (t *Tokenizer) Tokenize(text, locale string) Set {
	tokens := make(Set)
	if strings.TrimSpace(text) == "" {
		return tokens
	}

	switch locale {
	case LocaleJA:
		t.tokenizeJapanese(text, tokens)
	case LocaleZH:
		t.tokenizeChinese(text, tokens)
	}
	t.tokenizeLatin(text, tokens)
	t.injectNameAliases(text, tokens)

	return tokens
}

func (t *Tokenizer) tokenizeLatin(text string, tokens Set) {
	for _, run := range latinRunPattern.FindAllString(text, -1) {
		raw := strings.ToLower(run)
		trimmed := strings.Trim(raw, ".-")
		if trimmed == "" {
			continue
		}

		addLatinToken(tokens, trimmed)

		// Alias lookup runs on the untrimmed form too so ".net" style names
		// are not lost to edge trimming.
		for _, key := range []string{raw, trimmed} {
			if aliases, ok := specialAliases[key]; ok {
				for _, alias := range aliases {
					addLatinToken(tokens, alias)
				}
				break
			}
		}

		if strings.ContainsAny(trimmed, ".-") {
			for _, part := range strings.FieldsFunc(trimmed, func(r rune) bool {
				return r == '.' || r == '-'
			}) {
				addLatinToken(tokens, part)
			}
		}

		stripped := strings.Map(func(r rune) rune {
			if r == '+' || r == '.' || r == '#' || r == '-' {
				return -1
			}
			return r
		}, trimmed)
		if stripped != trimmed {
			addLatinToken(tokens, stripped)
		}
	}
}

func addLatinToken(tokens Set, tok string) {
	if tok == "" {
		return
	}
	if _, stop := stopwords[tok]; stop {
		return
	}
	if len(tok) < 3 {
		if _, ok := shortAllowlist[tok]; !ok && !containsDigit(tok) {
			return
		}
	}
	tokens.Add(tok)
}

func (t *Tokenizer) tokenizeJapanese(text string, tokens Set) {
	t.jaOnce.Do(func() {
		t.ja, t.jaErr = kagome.New(ipa.Dict(), kagome.OmitBosEos())
	})
	if t.jaErr != nil {
		return
	}

	for _, tok := range t.ja.Tokenize(text) {
		features := tok.Features()
		if len(features) > 0 {
			switch features[0] {
			case "助詞", "助動詞", "記号", "フィラー":
				continue
			}
		}
		surface := strings.ToLower(strings.TrimSpace(tok.Surface))
		if surface == "" || isPunctuation(surface) {
			continue
		}
		tokens.Add(surface)
		if base, ok := tok.BaseForm(); ok {
			base = strings.ToLower(base)
			if base != "" && base != "*" && base != surface && !isPunctuation(base) {
				tokens.Add(base)
			}
		}
	}
}

func (t *Tokenizer) tokenizeChinese(text string, tokens Set) {
	t.zhOnce.Do(func() {
		t.zh, t.zhErr = gse.New()
	})
	if t.zhErr != nil {
		return
	}

	// Search-mode cut emits compounds plus their dictionary sub-words, so a
	// query for 软件 still overlaps a chunk segmented as 开发软件. HMM covers
	// out-of-dictionary names.
	for _, seg := range t.zh.CutSearch(text, true) {
		seg = strings.ToLower(strings.TrimSpace(seg))
		if seg == "" || isPunctuation(seg) {
			continue
		}
		tokens.Add(seg)
	}
}

// injectNameAliases maps CJK phonetic spellings of the subject's name to the
// canonical Latin token. Only applied when the CJK analyzers produced no CJK
// tokens, i.e. a CJK name embedded in otherwise Latin text.
func (t *Tokenizer) injectNameAliases(text string, tokens Set) {
	if len(t.nameAliases) == 0 || !containsCJK(text) {
		return
	}
	for tok := range tokens {
		if containsCJK(tok) {
			return
		}
	}

	normalized := norm.NFKD.String(text)
	for alias, canonical := range t.nameAliases {
		if strings.Contains(normalized, alias) {
			tokens.Add(canonical)
		}
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return true
		}
	}
	return false
}

func isPunctuation(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
