package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-chat/backend/internal/metrics"
)

func TestNewClientDisabledWithoutKey(t *testing.T) {
	c := NewClient(Config{})

	assert.False(t, c.Enabled())
	assert.Equal(t, "gpt-4o-mini", c.model)

	_, err := c.Chat(context.Background(), "system", nil, "question")
	assert.Error(t, err)
}

func TestChatReturnsCompletionAndCountsTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})
	require.True(t, c.Enabled())

	promptBefore := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt"))
	completionBefore := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(c.model, "completion"))

	reply, err := c.Chat(context.Background(), "You answer questions.", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello there"},
	}, "What do you work on?")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	assert.Equal(t, promptBefore+10, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt")))
	assert.Equal(t, completionBefore+5, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(c.model, "completion")))
}

func TestChatEmptyChoicesFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	c := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})

	_, err := c.Chat(context.Background(), "system", nil, "question")
	assert.Error(t, err)
}
