package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/config"
)

func TestBuildSnapshotKey(t *testing.T) {
	type params struct {
		Page int    `json:"page"`
		Sort string `json:"sort"`
	}

	a, err := buildSnapshotKey("jan", KindItems, params{Page: 1, Sort: "sku"})
	require.NoError(t, err)
	b, err := buildSnapshotKey("jan", KindItems, params{Page: 1, Sort: "sku"})
	require.NoError(t, err)
	c, err := buildSnapshotKey("jan", KindItems, params{Page: 2, Sort: "sku"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "fba:snapshot:jan:items:"))
	assert.False(t, strings.HasPrefix(a, snapshotPrefix("ja")))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `fba:snapshot:q\[1\]\*:`, escapeGlob(snapshotPrefix("q[1]*")))
	assert.Equal(t, "plain", escapeGlob("plain"))
}

func TestBuildRedisOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{})
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	})

	t.Run("url", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{RedisURL: "redis://cache:6380/2"})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
		assert.Error(t, err)
	})
}

func TestNoopSnapshotCache(t *testing.T) {
	c, err := NewSnapshotCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "jan", KindSummary, nil, "text"))

	var out string
	hit, err := c.Get(ctx, "jan", KindSummary, nil, &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.InvalidateSnapshot(ctx, "jan"))
}
