package tokenizer

// stopwords are excluded from every token set. English function words plus a
// few conversational fillers recruiters tend to open questions with.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"being": {}, "this": {}, "that": {}, "these": {}, "those": {}, "for": {},
	"with": {}, "from": {}, "into": {}, "about": {}, "between": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "over": {}, "under": {}, "again": {}, "further": {},
	"then": {}, "than": {}, "such": {}, "but": {}, "nor": {}, "not": {},
	"only": {}, "own": {}, "same": {}, "too": {}, "very": {}, "can": {},
	"will": {}, "just": {}, "should": {}, "could": {}, "would": {},
	"has": {}, "have": {}, "had": {}, "does": {}, "did": {}, "doing": {},
	"you": {}, "your": {}, "yours": {}, "what": {}, "which": {}, "who": {},
	"whom": {}, "where": {}, "why": {}, "how": {}, "all": {}, "any": {},
	"both": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "tell": {}, "please": {}, "hello": {},
}
