package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactsCollapseDuplicateRoles(t *testing.T) {
	engine := newTestEngine(t)

	facts := engine.BuildWorkEducationFacts("which jobs did you have", "en", 0)

	// two Acme stints share one source key; education adds the second fact
	require.Len(t, facts, 2)
	keys := map[string]struct{}{}
	for _, f := range facts {
		keys[f.Key] = struct{}{}
	}
	assert.Contains(t, keys, "work:acme-senior-engineer")
	assert.Contains(t, keys, "education:state-university-bsc-computer-science")
}

func TestFactsExtractDateRange(t *testing.T) {
	engine := newTestEngine(t)

	facts := engine.BuildWorkEducationFacts("when did you work at Acme", "en", 0)
	require.NotEmpty(t, facts)

	var acme *Fact
	for i := range facts {
		if facts[i].Key == "work:acme-senior-engineer" {
			acme = &facts[i]
		}
	}
	require.NotNil(t, acme)
	assert.Equal(t, "2019-04 – 2022-08", acme.Detail)
}

func TestFactsFullTextForNonDateQuestions(t *testing.T) {
	engine := newTestEngine(t)

	facts := engine.BuildWorkEducationFacts("what did you do at Acme", "en", 0)
	require.NotEmpty(t, facts)

	var acme *Fact
	for i := range facts {
		if facts[i].Key == "work:acme-senior-engineer" {
			acme = &facts[i]
		}
	}
	require.NotNil(t, acme)
	assert.Contains(t, acme.Detail, "platform team")
}

func TestFactsRestrictedToWorkAndEducation(t *testing.T) {
	engine := newTestEngine(t)

	facts := engine.BuildWorkEducationFacts("when", "en", 0)
	for _, f := range facts {
		assert.NotContains(t, f.Key, "skill:")
		assert.NotContains(t, f.Key, "project:")
	}
}

func TestIsDateOriented(t *testing.T) {
	engine := newTestEngine(t)

	assert.True(t, engine.IsDateOriented("when did you graduate", "en"))
	assert.False(t, engine.IsDateOriented("do you enjoy mentoring", "en"))
}
