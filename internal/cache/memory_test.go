package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "calendar:2025-01", []byte("x"), time.Minute))
	v, ok, err := c.Get(ctx, "calendar:2025-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "calendar:2025-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "calendar:2025-01", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "calendar:2025-02", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "availability:2025-01-06", []byte("c"), 0))

	require.NoError(t, c.DeletePrefix(ctx, "calendar:"))

	_, ok, _ := c.Get(ctx, "calendar:2025-01")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "availability:2025-01-06")
	assert.True(t, ok)
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoop()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
