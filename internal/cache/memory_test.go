package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "decision:sha256:a1")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "decision:sha256:a1", `{"approved":true}`, 0))

	val, ok := c.Get(ctx, "decision:sha256:a1")
	assert.True(t, ok)
	assert.Equal(t, `{"approved":true}`, val)
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	// Expired entries are dropped, not resurrected.
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	current = current.Add(24 * time.Hour)

	val, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}
