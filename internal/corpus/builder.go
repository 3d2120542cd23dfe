package corpus

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/profile-chat/backend/internal/tokenizer"
	"github.com/profile-chat/backend/pkg/logger"
	"github.com/profile-chat/backend/pkg/utils"
)

// principlesChunkChars caps how much of the principles document lands in one
// chunk so a single hit stays a usable model-context snippet.
const principlesChunkChars = 400

var presentWord = map[string]string{
	"en": "present",
	"ja": "現在",
	"zh": "至今",
}

// Builder turns profile source documents into the two runtime artifacts: the
// anchor directory and the embedding index.
type Builder struct {
	tk      *tokenizer.Tokenizer
	locales []string
}

func NewBuilder(tk *tokenizer.Tokenizer, locales []string) *Builder {
	if len(locales) == 0 {
		locales = []string{DefaultLocale}
	}
	return &Builder{tk: tk, locales: locales}
}

// Build localizes, sanitizes and tokenizes every source record. Records that
// end up with no text or no tokens for a locale are skipped for that locale;
// records empty in every locale are excluded from the index entirely.
func (b *Builder) Build(src Sources) (*AnchorDirectory, *EmbeddingIndex, error) {
	if src.Resume == nil {
		return nil, nil, fmt.Errorf("resume document is required")
	}

	var (
		anchors []Anchor
		chunks  []Chunk
		slugs   = slugSet{}
	)

	add := func(a Anchor, c Chunk) {
		if len(c.Locales) == 0 {
			logger.Warn("Skipping empty record", zap.String("id", c.ID))
			return
		}
		anchors = append(anchors, a)
		chunks = append(chunks, c)
	}

	for _, skill := range src.Skills {
		a, c := b.buildSkill(skill, slugs)
		add(a, c)
	}
	for _, project := range src.Projects {
		a, c := b.buildProject(project, slugs)
		add(a, c)
	}

	resumeAnchor, resumeChunk := b.buildResumeBasics(src.Resume)
	add(resumeAnchor, resumeChunk)
	if len(resumeChunk.Locales) == 0 {
		// References always need a resume anchor, chunk or not.
		anchors = append(anchors, resumeAnchor)
	}

	for _, entry := range src.Resume.Work {
		a, c := b.buildResumeEntry(entry, SourceWork, CategoryExperience, src.Resume.Href, slugs)
		add(a, c)
	}
	for _, entry := range src.Resume.Education {
		a, c := b.buildResumeEntry(entry, SourceEducation, CategoryEducation, src.Resume.Href, slugs)
		add(a, c)
	}

	if src.Availability != nil {
		a, c := b.buildAvailability(src.Availability)
		add(a, c)
	}
	if src.Principles != nil {
		for _, pair := range b.buildPrinciples(src.Principles) {
			add(pair.anchor, pair.chunk)
		}
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i].ID < anchors[j].ID })
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })

	serialized, err := json.Marshal(chunks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize chunks: %w", err)
	}

	now := time.Now().UTC()
	directory := &AnchorDirectory{GeneratedAt: now, Anchors: anchors}
	index := &EmbeddingIndex{
		GeneratedAt: now,
		Hash:        utils.HashBytes(serialized),
		Chunks:      chunks,
	}

	logger.Info("Corpus built",
		zap.Int("anchors", len(anchors)),
		zap.Int("chunks", len(chunks)),
		zap.String("hash", index.Hash),
	)

	return directory, index, nil
}

// localeChunk sanitizes and tokenizes one localized payload. Returns false
// when the payload would be empty and must be skipped.
func (b *Builder) localeChunk(locale, title, href, text string) (ChunkLocale, bool) {
	clean := Sanitize(text)
	if clean == "" {
		return ChunkLocale{}, false
	}
	tokens := b.tk.Tokenize(clean, locale)
	if len(tokens) == 0 {
		return ChunkLocale{}, false
	}
	return ChunkLocale{
		Title:  title,
		Href:   href,
		Tokens: tokens.Sorted(),
		Text:   clean,
	}, true
}

func (b *Builder) buildSkill(skill Skill, slugs slugSet) (Anchor, Chunk) {
	sourceID := skill.ID
	if sourceID == "" {
		sourceID = Slugify(skill.Name.Get(DefaultLocale))
	}
	id := slugs.Unique("skill-" + sourceID)
	href := skill.Href
	if href == "" {
		href = "/skills#" + sourceID
	}

	anchor := Anchor{ID: id, Category: CategoryTech, Source: "skills", Locales: map[string]AnchorLocale{}}
	chunk := Chunk{ID: id, SourceType: SourceSkill, SourceID: sourceID, Locales: map[string]ChunkLocale{}}

	for _, locale := range b.locales {
		name := skill.Name.Get(locale)
		text := strings.Join([]string{name, strings.Join(skill.Keywords, " "), skill.Summary.Get(locale)}, " ")
		if payload, ok := b.localeChunk(locale, name, href, text); ok {
			chunk.Locales[locale] = payload
			anchor.Locales[locale] = AnchorLocale{Name: name, Href: href}
		}
	}
	return anchor, chunk
}

func (b *Builder) buildProject(project Project, slugs slugSet) (Anchor, Chunk) {
	sourceID := project.ID
	if sourceID == "" {
		sourceID = Slugify(project.Title.Get(DefaultLocale))
	}
	id := slugs.Unique("project-" + sourceID)
	href := project.Href
	if href == "" {
		href = "/projects#" + sourceID
	}

	anchor := Anchor{ID: id, Category: CategoryExperience, Source: "projects", Locales: map[string]AnchorLocale{}}
	chunk := Chunk{ID: id, SourceType: SourceProject, SourceID: sourceID, Locales: map[string]ChunkLocale{}}

	for _, locale := range b.locales {
		title := project.Title.Get(locale)
		parts := []string{title, project.Context.Get(locale), project.Summary.Get(locale)}
		for _, h := range project.Highlights {
			parts = append(parts, h.Get(locale))
		}
		parts = append(parts, strings.Join(project.Stack, " "))
		if payload, ok := b.localeChunk(locale, title, href, strings.Join(parts, " ")); ok {
			chunk.Locales[locale] = payload
			anchor.Locales[locale] = AnchorLocale{Name: title, Href: href}
		}
	}
	return anchor, chunk
}

func (b *Builder) buildResumeBasics(resume *Resume) (Anchor, Chunk) {
	href := resume.Href
	if href == "" {
		href = "/resume"
	}

	anchor := Anchor{ID: "resume", Category: CategoryResume, Source: "resume", Locales: map[string]AnchorLocale{}}
	chunk := Chunk{ID: "resume", SourceType: SourceResume, SourceID: "resume", Locales: map[string]ChunkLocale{}}

	for _, locale := range b.locales {
		label := resume.Basics.Label.Get(locale)
		title := resume.Basics.Name
		if label != "" {
			title = fmt.Sprintf("%s — %s", resume.Basics.Name, label)
		}
		text := strings.Join([]string{resume.Basics.Name, label, resume.Basics.Summary.Get(locale)}, " ")
		anchor.Locales[locale] = AnchorLocale{Name: title, Href: href}
		if payload, ok := b.localeChunk(locale, title, href, text); ok {
			chunk.Locales[locale] = payload
		}
	}
	return anchor, chunk
}

func (b *Builder) buildResumeEntry(entry ResumeEntry, sourceType, category, resumeHref string, slugs slugSet) (Anchor, Chunk) {
	sourceID := Slugify(fmt.Sprintf("%s %s", entry.Organization, entry.Role.Get(DefaultLocale)))
	id := slugs.Unique(sourceType + "-" + sourceID)
	href := entry.Href
	if href == "" {
		href = resumeHref
	}
	if href == "" {
		href = "/resume"
	}

	anchor := Anchor{ID: id, Category: category, Source: "resume", Locales: map[string]AnchorLocale{}}
	chunk := Chunk{ID: id, SourceType: sourceType, SourceID: sourceID, Locales: map[string]ChunkLocale{}}

	for _, locale := range b.locales {
		role := entry.Role.Get(locale)
		title := fmt.Sprintf("%s — %s", role, entry.Organization)
		text := strings.Join([]string{
			role, entry.Organization, formatDateRange(entry.Start, entry.End, locale), entry.Summary.Get(locale),
		}, " ")
		if payload, ok := b.localeChunk(locale, title, href, text); ok {
			chunk.Locales[locale] = payload
			anchor.Locales[locale] = AnchorLocale{Name: title, Href: href}
		}
	}
	return anchor, chunk
}

func (b *Builder) buildAvailability(av *Availability) (Anchor, Chunk) {
	href := av.Href
	if href == "" {
		href = "/availability"
	}
	titles := map[string]string{"en": "Availability", "ja": "面談可能時間", "zh": "可预约时间"}

	anchor := Anchor{ID: "availability", Category: CategoryAvailability, Source: "availability", Locales: map[string]AnchorLocale{}}
	chunk := Chunk{ID: "availability", SourceType: SourceAvailability, SourceID: "availability", Locales: map[string]ChunkLocale{}}

	for _, locale := range b.locales {
		title, ok := titles[locale]
		if !ok {
			title = titles[DefaultLocale]
		}
		if payload, ok := b.localeChunk(locale, title, href, RenderAvailability(av, locale)); ok {
			chunk.Locales[locale] = payload
			anchor.Locales[locale] = AnchorLocale{Name: title, Href: href}
		}
	}
	return anchor, chunk
}

type anchorChunk struct {
	anchor Anchor
	chunk  Chunk
}

// buildPrinciples splits the free-text principles document into sentence
// groups per locale. Locales may yield different counts; chunk n carries
// whichever locales produced an n-th group.
func (b *Builder) buildPrinciples(p *Principles) []anchorChunk {
	href := p.Href
	if href == "" {
		href = "/principles"
	}
	titles := map[string]string{"en": "Working principles", "ja": "仕事の価値観", "zh": "工作原则"}

	groups := make(map[string][]string, len(b.locales))
	maxGroups := 0
	for _, locale := range b.locales {
		text := Sanitize(p.Text.Get(locale))
		if text == "" {
			continue
		}
		g := groupSentences(splitSentences(text, locale), principlesChunkChars)
		groups[locale] = g
		if len(g) > maxGroups {
			maxGroups = len(g)
		}
	}

	out := make([]anchorChunk, 0, maxGroups)
	for i := 0; i < maxGroups; i++ {
		id := fmt.Sprintf("principles-%d", i+1)
		anchor := Anchor{ID: id, Category: CategoryBehavioral, Source: "principles", Locales: map[string]AnchorLocale{}}
		chunk := Chunk{ID: id, SourceType: SourcePrinciples, SourceID: id, Locales: map[string]ChunkLocale{}}
		for _, locale := range b.locales {
			g := groups[locale]
			if i >= len(g) {
				continue
			}
			title, ok := titles[locale]
			if !ok {
				title = titles[DefaultLocale]
			}
			if payload, ok := b.localeChunk(locale, title, href, g[i]); ok {
				chunk.Locales[locale] = payload
				anchor.Locales[locale] = AnchorLocale{Name: title, Href: href}
			}
		}
		out = append(out, anchorChunk{anchor: anchor, chunk: chunk})
	}
	return out
}

func formatDateRange(start, end, locale string) string {
	if start == "" {
		return ""
	}
	if end == "" {
		end = presentWord[locale]
		if end == "" {
			end = presentWord[DefaultLocale]
		}
	}
	return fmt.Sprintf("%s – %s", start, end)
}

// splitSentences segments text for chunking. Latin text goes through the
// prose segmenter; CJK text is split on terminal punctuation.
func splitSentences(text, locale string) []string {
	if locale == "ja" || locale == "zh" {
		var out []string
		var current strings.Builder
		for _, r := range text {
			current.WriteRune(r)
			if r == '。' || r == '！' || r == '？' || r == '!' || r == '?' {
				if s := strings.TrimSpace(current.String()); s != "" {
					out = append(out, s)
				}
				current.Reset()
			}
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			out = append(out, s)
		}
		return out
	}

	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return []string{text}
	}
	sentences := doc.Sentences()
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

func groupSentences(sentences []string, maxChars int) []string {
	var out []string
	var current strings.Builder
	for _, s := range sentences {
		if current.Len() > 0 && current.Len()+len(s)+1 > maxChars {
			out = append(out, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
