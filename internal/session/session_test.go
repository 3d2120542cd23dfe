package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeepsLongClientID(t *testing.T) {
	id := "abcdef0123456789abcdef"
	assert.Equal(t, id, Resolve(id))
	assert.Equal(t, id, Resolve("  "+id+"  "))
}

func TestResolveReplacesShortOrEmptyID(t *testing.T) {
	for _, clientID := range []string{"", "short", "   ", "fifteen-chars.."} {
		resolved := Resolve(clientID)
		_, err := uuid.Parse(resolved)
		assert.NoError(t, err, "client id %q", clientID)
	}
}

func TestMemoryCounter(t *testing.T) {
	c := NewMemoryCounter()
	defer c.Stop()
	ctx := context.Background()

	n, err := c.Peek(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = c.Increment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = c.Increment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Peek(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Peek(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
