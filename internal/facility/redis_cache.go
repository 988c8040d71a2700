package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/seoul-transit/access-router/internal/network"
)

const redisScoreKeyPrefix = "access-router:convenience:"

// RedisCache is a write-behind cache-aside persistence layer for computed
// convenience scores: a restarted process can warm-start from it instead
// of recomputing from raw facility counts, but it is never the source of
// truth — a Redis miss or outage only costs cold-start latency, never
// correctness, since UpdateFacilityCounts always recomputes from scratch.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an already-connected client. ttl bounds how long a
// warm-start snapshot is trusted before it is treated as stale.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Store persists one station's four per-profile scores. Errors are logged
// and swallowed: a failed write degrades to "not cached", not a service
// failure, matching the cache-aside contract in CacheWriter's doc comment.
func (c *RedisCache) Store(id network.StationID, scores [4]float64) {
	data, err := json.Marshal(scores)
	if err != nil {
		logrus.WithError(err).Warn("facility redis cache: marshal failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := fmt.Sprintf("%s%d", redisScoreKeyPrefix, id)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("station_id", id).Warn("facility redis cache: write failed")
	}
}

// WarmStart loads every previously cached score back into a Service ahead
// of the first UpdateFacilityCounts call. ids enumerates every station in
// the network store; missing or expired keys are skipped silently.
func (c *RedisCache) WarmStart(ctx context.Context, ids []network.StationID) map[network.StationID][4]float64 {
	out := make(map[network.StationID][4]float64, len(ids))
	for _, id := range ids {
		key := fmt.Sprintf("%s%d", redisScoreKeyPrefix, id)
		data, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var scores [4]float64
		if err := json.Unmarshal(data, &scores); err != nil {
			continue
		}
		out[id] = scores
	}
	return out
}
