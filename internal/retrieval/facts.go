package retrieval

import (
	"regexp"

	"github.com/profile-chat/backend/internal/corpus"
)

// Fact is a compact work/education statement for date-style questions.
type Fact struct {
	Key    string
	Title  string
	Detail string
	Href   string
}

// factSourceTypes is the allow-list: only employment and education chunks can
// yield facts, whatever else the index contains.
var factSourceTypes = map[string]struct{}{
	corpus.SourceWork:      {},
	corpus.SourceEducation: {},
}

// dateQuestionTokens mark a question as date-oriented across the three
// supported languages.
var dateQuestionTokens = []string{
	"when", "year", "years", "long", "since", "until", "start", "started",
	"end", "ended", "graduate", "graduated", "date", "dates", "duration",
	"いつ", "何年", "期間", "卒業", "多久", "几年", "何时", "毕业",
}

var dateRangePattern = regexp.MustCompile(
	`(19|20)\d{2}(-\d{2})?\s*[–—-]\s*((19|20)\d{2}(-\d{2})?|present|現在|至今)`)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// BuildWorkEducationFacts answers "when / how long / which job" style
// questions from the resume chunks. Near-duplicate roles (two stints under
// different chunk ids) collapse under a shared source key; for date-oriented
// questions the date range substring replaces the full chunk text.
func (e *Engine) BuildWorkEducationFacts(question, locale string, maxChars int) []Fact {
	if maxChars <= 0 {
		maxChars = 240
	}
	candidates, ok := e.byLocale[locale]
	if !ok {
		candidates = e.byLocale[corpus.DefaultLocale]
		locale = corpus.DefaultLocale
	}

	query := e.tk.Tokenize(corpus.Sanitize(question), locale)
	dateOriented := triggered(query, dateQuestionTokens)

	seen := make(map[string]struct{})
	var facts []Fact
	for _, c := range candidates {
		if _, ok := factSourceTypes[c.sourceType]; !ok {
			continue
		}
		key := c.sourceType + ":" + c.sourceID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		detail := c.payload.Text
		if dateOriented {
			if r := dateRangePattern.FindString(detail); r != "" {
				detail = r
			} else if y := yearPattern.FindString(detail); y != "" {
				detail = y
			}
		}
		facts = append(facts, Fact{
			Key:    key,
			Title:  c.payload.Title,
			Detail: corpus.Truncate(detail, maxChars),
			Href:   c.payload.Href,
		})
	}
	return facts
}

// IsDateOriented reports whether the question asks about dates or durations.
func (e *Engine) IsDateOriented(question, locale string) bool {
	return triggered(e.tk.Tokenize(corpus.Sanitize(question), locale), dateQuestionTokens)
}
