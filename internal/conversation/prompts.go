package conversation

import (
	"fmt"
	"strings"

	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/retrieval"
)

var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
}

func buildSystemPrompt(subjectName, contextBlock, factsBlock, locale string) string {
	language, ok := languageNames[locale]
	if !ok {
		language = languageNames["en"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional assistant answering questions about %s's background on their behalf.\n\n", subjectName)
	b.WriteString("Rules:\n")
	b.WriteString("1. Answer ONLY from the context below. Never invent skills, employers, dates or projects.\n")
	b.WriteString("2. When the context does not cover the question, say so and point to the resume link.\n")
	b.WriteString("3. Cite the relevant link from the context when one applies.\n")
	fmt.Fprintf(&b, "4. Reply in %s.\n", language)
	b.WriteString("5. Keep replies to a few sentences, professional and concrete.\n")

	if contextBlock != "" {
		b.WriteString("\nContext:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n")
	}
	if factsBlock != "" {
		b.WriteString("\nEmployment and education facts:\n")
		b.WriteString(factsBlock)
		b.WriteString("\n")
	}
	return b.String()
}

func buildFactsBlock(facts []retrieval.Fact) string {
	var b strings.Builder
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s: %s\n", f.Title, f.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// fallback replies are deterministic and never echo the visitor's question,
// so they stay safe to serve without the model.
var fallbackNoMatch = map[string]string{
	"en": "I could not find that in %s's background notes. The full resume at %s is the best place to look.",
	"ja": "その件は%sの経歴資料に見つかりませんでした。詳しくは %s の職務経歴書をご覧ください。",
	"zh": "在%s的背景资料中没有找到相关内容。完整简历请见 %s。",
}

var fallbackMatch = map[string]string{
	"en": "Here is what %s's notes say about that — %s: %s (more at %s)",
	"ja": "%sの資料には次の記載があります。%s: %s（詳細: %s）",
	"zh": "%s的资料中有如下记录。%s: %s（详情: %s）",
}

func fallbackReply(subjectName, resumeHref, locale string, hits []retrieval.Hit, snippetChars int) string {
	if len(hits) == 0 {
		format, ok := fallbackNoMatch[locale]
		if !ok {
			format = fallbackNoMatch["en"]
		}
		return fmt.Sprintf(format, subjectName, resumeHref)
	}

	top := hits[0]
	format, ok := fallbackMatch[locale]
	if !ok {
		format = fallbackMatch["en"]
	}
	if snippetChars <= 0 {
		snippetChars = 280
	}
	return fmt.Sprintf(format, subjectName, top.Title, corpus.Truncate(top.Text, snippetChars), top.Href)
}
