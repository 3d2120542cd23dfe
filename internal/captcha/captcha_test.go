package captcha

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-chat/backend/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(Config{
		PromptThreshold: 2,
		ChallengeTTL:    5 * time.Minute,
		SolvedTTL:       30 * time.Minute,
		Now:             clock.Now,
	})
	return m, clock
}

func TestGateAllowsBelowThreshold(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	for count := 0; count < 2; count++ {
		allowed, challenge := m.Gate("s1", "", count)
		assert.True(t, allowed, "prompt count %d", count)
		assert.Nil(t, challenge)
	}
}

func TestGateChallengesAtThreshold(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	allowed, challenge := m.Gate("s1", "", 2)
	assert.False(t, allowed)
	require.NotNil(t, challenge)
	assert.Len(t, challenge.Code, 6)
}

func TestGateRepeatedCallsKeepActiveChallenge(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	_, first := m.Gate("s1", "", 2)
	require.NotNil(t, first)
	_, second := m.Gate("s1", "", 2)
	require.NotNil(t, second)

	assert.Equal(t, first.Code, second.Code)
}

func TestGateCorrectAnswerGrantsAccess(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	_, challenge := m.Gate("s1", "", 2)
	require.NotNil(t, challenge)

	allowed, next := m.Gate("s1", challenge.Code, 2)
	assert.True(t, allowed)
	assert.Nil(t, next)
	assert.True(t, m.Solved("s1"))

	// subsequent prompts pass without a token while the grant holds
	allowed, next = m.Gate("s1", "", 3)
	assert.True(t, allowed)
	assert.Nil(t, next)
}

func TestGateAnswerIsCaseInsensitive(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	_, challenge := m.Gate("s1", "", 2)
	require.NotNil(t, challenge)

	allowed, _ := m.Gate("s1", "  "+strings.ToLower(challenge.Code)+" ", 2)
	assert.True(t, allowed)
}

func TestGateWrongAnswerSupersedesChallenge(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	_, first := m.Gate("s1", "", 2)
	require.NotNil(t, first)

	allowed, second := m.Gate("s1", "WRONGX", 2)
	assert.False(t, allowed)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Code, second.Code)

	// the superseded code no longer works
	allowed, _ = m.Gate("s1", first.Code, 2)
	assert.False(t, allowed)
}

func TestGateChallengeExpires(t *testing.T) {
	m, clock := newTestManager()
	defer m.Stop()

	_, first := m.Gate("s1", "", 2)
	require.NotNil(t, first)

	clock.Advance(6 * time.Minute)
	allowed, second := m.Gate("s1", first.Code, 2)
	assert.False(t, allowed)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Code, second.Code)
}

func TestGateSolvedGrantExpires(t *testing.T) {
	m, clock := newTestManager()
	defer m.Stop()

	_, challenge := m.Gate("s1", "", 2)
	require.NotNil(t, challenge)
	allowed, _ := m.Gate("s1", challenge.Code, 2)
	require.True(t, allowed)

	clock.Advance(31 * time.Minute)
	assert.False(t, m.Solved("s1"))

	allowed, next := m.Gate("s1", "", 5)
	assert.False(t, allowed)
	assert.NotNil(t, next)
}

func TestGateCountsIssuedAndSolvedEvents(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	issuedBefore := testutil.ToFloat64(metrics.CaptchaChallenges.WithLabelValues("issued"))
	solvedBefore := testutil.ToFloat64(metrics.CaptchaChallenges.WithLabelValues("solved"))

	_, challenge := m.Gate("s1", "", 2)
	require.NotNil(t, challenge)

	// re-gating the same active challenge must not count a second issue
	_, again := m.Gate("s1", "", 2)
	require.NotNil(t, again)

	allowed, _ := m.Gate("s1", challenge.Code, 2)
	require.True(t, allowed)

	assert.Equal(t, issuedBefore+1, testutil.ToFloat64(metrics.CaptchaChallenges.WithLabelValues("issued")))
	assert.Equal(t, solvedBefore+1, testutil.ToFloat64(metrics.CaptchaChallenges.WithLabelValues("solved")))
}

func TestGateSessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager()
	defer m.Stop()

	_, challenge := m.Gate("s1", "", 2)
	require.NotNil(t, challenge)

	allowed, _ := m.Gate("s2", challenge.Code, 2)
	assert.False(t, allowed)
}
