package corpus

import (
	"encoding/json"
	"time"
)

// DefaultLocale is the fallback language for every localized field.
const DefaultLocale = "en"

// Anchor categories, mirrored in the site navigation.
const (
	CategoryTech         = "tech"
	CategoryExperience   = "experience"
	CategoryEducation    = "education"
	CategoryAvailability = "availability"
	CategoryResume       = "resume"
	CategoryBehavioral   = "behavioral"
)

// Chunk source types.
const (
	SourceSkill        = "skill"
	SourceProject      = "project"
	SourceWork         = "work"
	SourceEducation    = "education"
	SourceAvailability = "availability"
	SourcePrinciples   = "principles"
	SourceResume       = "resume"
)

// LocalizedText maps locale to a translated string. Source documents may
// supply a bare string instead of a map; it is normalized into a
// single-entry map under the default locale on unmarshal.
type LocalizedText map[string]string

func (lt *LocalizedText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*lt = LocalizedText{DefaultLocale: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*lt = m
	return nil
}

// Get returns the value for locale, falling back to the default locale.
func (lt LocalizedText) Get(locale string) string {
	if v, ok := lt[locale]; ok && v != "" {
		return v
	}
	return lt[DefaultLocale]
}

// --- builder inputs ---

type Skill struct {
	ID       string        `json:"id"`
	Name     LocalizedText `json:"name"`
	Category string        `json:"category"`
	Summary  LocalizedText `json:"summary"`
	Keywords []string      `json:"keywords"`
	Href     string        `json:"href"`
}

type Project struct {
	ID         string          `json:"id"`
	Title      LocalizedText   `json:"title"`
	Context    LocalizedText   `json:"context"`
	Summary    LocalizedText   `json:"summary"`
	Highlights []LocalizedText `json:"highlights"`
	Stack      []string        `json:"stack"`
	Href       string          `json:"href"`
}

type Resume struct {
	Href      string        `json:"href"`
	Basics    ResumeBasics  `json:"basics"`
	Work      []ResumeEntry `json:"work"`
	Education []ResumeEntry `json:"education"`
}

type ResumeBasics struct {
	Name    string        `json:"name"`
	Label   LocalizedText `json:"label"`
	Summary LocalizedText `json:"summary"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
}

type ResumeEntry struct {
	Organization string        `json:"organization"`
	Role         LocalizedText `json:"role"`
	Summary      LocalizedText `json:"summary"`
	Start        string        `json:"start"`
	End          string        `json:"end"`
	Href         string        `json:"href"`
}

type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Availability struct {
	Timezone    string                 `json:"timezone"`
	SlotMinutes int                    `json:"slotMinutes"`
	Week        map[string][]TimeRange `json:"week"`
	Note        LocalizedText          `json:"note"`
	Href        string                 `json:"href"`
}

type Principles struct {
	Text LocalizedText `json:"text"`
	Href string        `json:"href"`
}

// Sources bundles every builder input document.
type Sources struct {
	Skills       []Skill
	Projects     []Project
	Resume       *Resume
	Availability *Availability
	Principles   *Principles
}

// --- builder outputs (the file contract with the runtime) ---

type AnchorLocale struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type Anchor struct {
	ID       string                  `json:"id"`
	Category string                  `json:"category"`
	Source   string                  `json:"source"`
	Locales  map[string]AnchorLocale `json:"locales"`
}

type AnchorDirectory struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Anchors     []Anchor  `json:"anchors"`
}

type ChunkLocale struct {
	Title  string   `json:"title"`
	Href   string   `json:"href"`
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
}

type Chunk struct {
	ID         string                 `json:"id"`
	SourceType string                 `json:"sourceType"`
	SourceID   string                 `json:"sourceId"`
	Locales    map[string]ChunkLocale `json:"locales"`
}

type EmbeddingIndex struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Hash        string    `json:"hash"`
	Chunks      []Chunk   `json:"chunks"`
}
