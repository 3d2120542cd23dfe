package corpus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-chat/backend/internal/tokenizer"
)

func testSources() Sources {
	return Sources{
		Skills: []Skill{
			{
				Name:     LocalizedText{"en": "Distributed Systems"},
				Keywords: []string{"microservices", "kafka", "grpc"},
				Summary:  LocalizedText{"en": "Event-driven backends at scale"},
			},
			{
				Name:    LocalizedText{"en": "Cloud Infrastructure"},
				Summary: LocalizedText{"en": "Containers, orchestration and infrastructure as code"},
				Href:    "/skills#cloud",
			},
		},
		Projects: []Project{
			{
				Title:   LocalizedText{"en": "Payments Platform"},
				Context: LocalizedText{"en": "Fintech scale-up"},
				Summary: LocalizedText{"en": "Rebuilt the settlement pipeline for reliability"},
				Stack:   []string{"go", "postgresql"},
			},
		},
		Resume: &Resume{
			Href: "/resume",
			Basics: ResumeBasics{
				Name:    "Jane Doe",
				Label:   LocalizedText{"en": "Backend Engineer"},
				Summary: LocalizedText{"en": "Ten years building server-side systems. Contact: jane@example.com"},
				Email:   "jane@example.com",
			},
			Work: []ResumeEntry{
				{
					Organization: "Acme",
					Role:         LocalizedText{"en": "Senior Engineer"},
					Summary:      LocalizedText{"en": "Led the platform team"},
					Start:        "2019-04",
					End:          "2022-08",
				},
				{
					Organization: "Acme",
					Role:         LocalizedText{"en": "Senior Engineer"},
					Summary:      LocalizedText{"en": "Second stint on the same team"},
					Start:        "2023-01",
				},
			},
			Education: []ResumeEntry{
				{
					Organization: "State University",
					Role:         LocalizedText{"en": "BSc Computer Science"},
					Summary:      LocalizedText{"en": "Graduated with honors"},
					Start:        "2009",
					End:          "2013",
				},
			},
		},
		Availability: &Availability{
			Timezone:    "Europe/Berlin",
			SlotMinutes: 30,
			Week: map[string][]TimeRange{
				"mon": {{Start: "09:00", End: "12:00"}},
				"thu": {{Start: "14:00", End: "17:00"}},
			},
		},
		Principles: &Principles{
			Text: LocalizedText{"en": "I favor boring technology. Code review is a teaching tool, not a gate."},
		},
	}
}

func newTestBuilder() *Builder {
	return NewBuilder(tokenizer.New(nil), []string{"en"})
}

func TestBuildProducesAnchorsAndChunks(t *testing.T) {
	directory, index, err := newTestBuilder().Build(testSources())
	require.NoError(t, err)

	ids := make(map[string]Chunk, len(index.Chunks))
	for _, c := range index.Chunks {
		ids[c.ID] = c
	}

	assert.Contains(t, ids, "skill-distributed-systems")
	assert.Contains(t, ids, "project-payments-platform")
	assert.Contains(t, ids, "work-acme-senior-engineer")
	assert.Contains(t, ids, "work-acme-senior-engineer-2")
	assert.Contains(t, ids, "education-state-university-bsc-computer-science")
	assert.Contains(t, ids, "availability")
	assert.Contains(t, ids, "resume")
	assert.Contains(t, ids, "principles-1")

	assert.Len(t, directory.Anchors, len(index.Chunks))

	for _, chunk := range index.Chunks {
		require.NotEmpty(t, chunk.Locales, "chunk %s", chunk.ID)
		for locale, payload := range chunk.Locales {
			assert.NotEmpty(t, payload.Tokens, "chunk %s locale %s", chunk.ID, locale)
			assert.NotEmpty(t, payload.Text)
		}
	}
}

func TestBuildRedactsPII(t *testing.T) {
	_, index, err := newTestBuilder().Build(testSources())
	require.NoError(t, err)

	serialized, err := json.Marshal(index.Chunks)
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "jane@example.com")
}

func TestBuildDeterministicHash(t *testing.T) {
	b := newTestBuilder()

	_, first, err := b.Build(testSources())
	require.NoError(t, err)
	_, second, err := b.Build(testSources())
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.NotEmpty(t, first.Hash)
}

func TestBuildHashChangesWithContent(t *testing.T) {
	b := newTestBuilder()

	_, first, err := b.Build(testSources())
	require.NoError(t, err)

	src := testSources()
	src.Skills[0].Summary = LocalizedText{"en": "Something materially different"}
	_, second, err := b.Build(src)
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestBuildSkipsEmptyRecords(t *testing.T) {
	src := testSources()
	src.Skills = append(src.Skills, Skill{Name: LocalizedText{"en": "   "}})

	_, index, err := newTestBuilder().Build(src)
	require.NoError(t, err)

	for _, chunk := range index.Chunks {
		assert.NotEqual(t, "skill-", chunk.ID)
	}
}

func TestBuildRequiresResume(t *testing.T) {
	src := testSources()
	src.Resume = nil

	_, _, err := newTestBuilder().Build(src)
	assert.Error(t, err)
}

func TestLocalizedTextNormalizesPlainString(t *testing.T) {
	var lt LocalizedText
	require.NoError(t, json.Unmarshal([]byte(`"plain value"`), &lt))
	assert.Equal(t, LocalizedText{"en": "plain value"}, lt)

	require.NoError(t, json.Unmarshal([]byte(`{"en":"hello","ja":"こんにちは"}`), &lt))
	assert.Equal(t, "こんにちは", lt.Get("ja"))
	assert.Equal(t, "hello", lt.Get("zh"), "missing locale falls back to default")
}
