package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"en", "ja", "zh"}, cfg.Corpus.Locales)
	assert.Equal(t, "en", cfg.Corpus.DefaultLocale)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageChars)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window())
	assert.Equal(t, 2, cfg.Captcha.PromptThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Captcha.ChallengeTTL())
	assert.Equal(t, 30*time.Minute, cfg.Captcha.SolvedTTL())
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.False(t, cfg.SQLite.Enabled)
}
