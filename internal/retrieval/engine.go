package retrieval

import (
	"sort"

	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/corpus"
	"github.com/profile-chat/backend/internal/tokenizer"
	"github.com/profile-chat/backend/pkg/logger"
)

// Hit is one retrieval result. Score is in (0, 1] for scored hits; bridge
// hits carry the fixed score of their rule.
type Hit struct {
	AnchorID   string
	SourceType string
	SourceID   string
	Title      string
	Href       string
	Text       string
	Score      float64
	Bridge     bool
}

type candidate struct {
	anchorID   string
	sourceType string
	sourceID   string
	payload    corpus.ChunkLocale
	tokens     tokenizer.Set
}

// Engine scores the embedding index against incoming questions. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	tk       *tokenizer.Tokenizer
	res      *corpus.Resources
	locales  []string
	byLocale map[string][]candidate
	bridges  []BridgeRule
}

// NewEngine resolves locale fallback once per entity up front: a chunk with
// no payload for a locale contributes its default-locale payload instead, so
// query-time lookups are unconditional map reads.
func NewEngine(tk *tokenizer.Tokenizer, res *corpus.Resources, locales []string, bridges []BridgeRule) *Engine {
	if len(locales) == 0 {
		locales = []string{corpus.DefaultLocale}
	}
	if bridges == nil {
		bridges = DefaultBridgeRules()
	}

	byLocale := make(map[string][]candidate, len(locales))
	for _, locale := range locales {
		var candidates []candidate
		for _, chunk := range res.Index.Chunks {
			payload, ok := chunk.Locales[locale]
			if !ok {
				payload, ok = chunk.Locales[corpus.DefaultLocale]
			}
			if !ok {
				continue
			}
			tokens := make(tokenizer.Set, len(payload.Tokens))
			for _, tok := range payload.Tokens {
				tokens.Add(tok)
			}
			candidates = append(candidates, candidate{
				anchorID:   chunk.ID,
				sourceType: chunk.SourceType,
				sourceID:   chunk.SourceID,
				payload:    payload,
				tokens:     tokens,
			})
		}
		byLocale[locale] = candidates
	}

	return &Engine{tk: tk, res: res, locales: locales, byLocale: byLocale, bridges: bridges}
}

// Retrieve returns the top hits for a question, bridge hints included.
func (e *Engine) Retrieve(question, locale string, limit int) []Hit {
	if limit <= 0 {
		limit = 5
	}
	candidates, ok := e.byLocale[locale]
	if !ok {
		candidates = e.byLocale[corpus.DefaultLocale]
		locale = corpus.DefaultLocale
	}

	query := tokenizer.ExpandQuery(e.tk.Tokenize(corpus.Sanitize(question), locale))

	var hits []Hit
	for _, c := range candidates {
		score := jaccard(query, c.tokens)
		if score == 0 {
			continue
		}
		hits = append(hits, Hit{
			AnchorID:   c.anchorID,
			SourceType: c.sourceType,
			SourceID:   c.sourceID,
			Title:      c.payload.Title,
			Href:       c.payload.Href,
			Text:       c.payload.Text,
			Score:      score,
		})
	}

	hits = append(hits, e.bridgeHits(query, locale)...)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].AnchorID < hits[j].AnchorID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	logger.Debug("Retrieval complete",
		zap.String("locale", locale),
		zap.Int("query_tokens", len(query)),
		zap.Int("hits", len(hits)),
	)

	return hits
}

// jaccard is |A ∩ B| / |A ∪ B|. Zero when the sets share nothing.
func jaccard(a, b tokenizer.Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for tok := range small {
		if large.Has(tok) {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
