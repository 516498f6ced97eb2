package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"strings"       // Key joining
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// CacheTTL is how long read-side responses stay cached
const CacheTTL = 60 * time.Second

// WalletKey is the cache key of a user's wallet snapshot
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.FormatUint(uint64(userID), 10)
}

// AnalyticsKey is the cache key of a user's analytics rollup
func AnalyticsKey(userID uint) string {
	return "analytics:user:" + strconv.FormatUint(uint64(userID), 10)
}

// HistoryKey is the cache key of one page of a user's transaction history
func HistoryKey(userID uint, parts ...string) string {
	return historyPrefix(userID) + strings.Join(parts, ":")
}

func historyPrefix(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// GetCache retrieves a value from Redis and unmarshals it into dest. A nil client is a miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Nothing to delete
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeletePattern deletes every key matching pattern, scanning in batches
func DeletePattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator() // Cursor over matching keys
	var batch []string                                 // Keys pending deletion
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := rdb.Del(ctx, batch...).Err(); err != nil {
				return err // Stop on the first failed batch
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err // Scan failed
	}
	return DeleteCache(ctx, rdb, batch...) // Flush the remainder
}

// InvalidateWallet drops every cached view that shows the user's balance or ledger,
// including the admin listings
func InvalidateWallet(ctx context.Context, rdb *redis.Client, userID uint) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	if err := DeleteCache(ctx, rdb, WalletKey(userID), AnalyticsKey(userID)); err != nil {
		return err
	}
	for _, pattern := range []string{historyPrefix(userID) + "*", "admin:txs:*", "admin:users:*"} {
		if err := DeletePattern(ctx, rdb, pattern); err != nil {
			return err
		}
	}
	return nil
}
