package utils

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "wallet:user:7", WalletKey(7))
	assert.Equal(t, "analytics:user:7", AnalyticsKey(7))
	assert.Equal(t, "txhistory:user:7:page:2:size:20", HistoryKey(7, "page", "2", "size", "20"))
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	ctx := context.Background()
	var dest map[string]any

	found, err := GetCache(ctx, nil, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", map[string]any{"a": 1}, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, InvalidateWallet(ctx, nil, 7))
}

func TestUnreachableRedisReportsErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	var dest map[string]any
	found, err := GetCache(ctx, rdb, "k", &dest)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, InvalidateWallet(ctx, rdb, 7))
}
