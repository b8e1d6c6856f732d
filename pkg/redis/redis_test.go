package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(Disabled(), "scorer")

	var result map[string]float64
	found, err := cache.Get(ctx, "missing", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "k", map[string]float64{"a": 1}, TTLShort))
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestRegimeKey(t *testing.T) {
	assert.Equal(t, "regime:2024-03-01:QQQ,SPY", RegimeKey("2024-03-01", "QQQ,SPY"))
}
