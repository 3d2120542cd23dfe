package retrieval

import (
	"fmt"
	"strings"

	"github.com/profile-chat/backend/internal/corpus"
)

// Reference is one entry of the reply's source list.
type Reference struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// BuildReferences maps hits back through the anchor directory, preferring the
// anchor's display name and link over the raw chunk's. The list is deduplicated
// by href and always contains exactly one resume reference.
func (e *Engine) BuildReferences(hits []Hit, locale string) []Reference {
	seen := make(map[string]struct{})
	var refs []Reference

	appendRef := func(title, href string) {
		if href == "" || title == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		refs = append(refs, Reference{Title: title, Href: href})
	}

	for _, hit := range hits {
		title, href := hit.Title, hit.Href
		if anchor, ok := e.res.AnchorByID[hit.AnchorID]; ok {
			if payload, ok := e.anchorLocale(anchor, locale); ok {
				title, href = payload.Name, payload.Href
			}
		}
		appendRef(title, href)
	}

	if resume, ok := e.res.AnchorByID["resume"]; ok {
		if payload, ok := e.anchorLocale(resume, locale); ok {
			appendRef(payload.Name, payload.Href)
		}
	}

	return refs
}

func (e *Engine) anchorLocale(anchor corpus.Anchor, locale string) (corpus.AnchorLocale, bool) {
	if payload, ok := anchor.Locales[locale]; ok {
		return payload, true
	}
	payload, ok := anchor.Locales[corpus.DefaultLocale]
	return payload, ok
}

// BuildContextBlock renders the hits as a numbered plain-text block for the
// model prompt. Each snippet is cut to snippetChars and the whole block to
// maxChars, so one long chunk cannot crowd out the rest.
func (e *Engine) BuildContextBlock(hits []Hit, snippetChars, maxChars int) string {
	if snippetChars <= 0 {
		snippetChars = 280
	}
	if maxChars <= 0 {
		maxChars = 2400
	}

	var b strings.Builder
	for i, hit := range hits {
		line := fmt.Sprintf("%d. %s — %s (link: %s)\n",
			i+1, hit.Title, corpus.Truncate(hit.Text, snippetChars), hit.Href)
		if b.Len()+len(line) > maxChars {
			break
		}
		b.WriteString(line)
	}
	return strings.TrimRight(b.String(), "\n")
}
